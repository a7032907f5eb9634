package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"ada/internal/agent"
	"ada/internal/channel"
	"ada/internal/config"
)

var (
	version      = "0.1.0"
	configPath   string // overridable via --config flag
	workDirFlag  string
	providerFlag string
	logLevelFlag string
)

func main() {
	agent.SetVersion(version)

	root := &cobra.Command{
		Use:   "ada",
		Short: "Ada: a terminal assistant that routes requests to tools",
		Long: "Ada runs shell commands directly, and sends everything else through an intent\n" +
			"classifier to a specialist agent with a bounded set of tools.",
		SilenceUsage: true,
		RunE:         runChat,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.ada/config.json)")
	root.PersistentFlags().StringVarP(&workDirFlag, "workdir", "C", "", "working directory for tools (default: general.workspace or current directory)")
	root.PersistentFlags().StringVarP(&providerFlag, "provider", "p", "", "oracle provider (overrides general.defaultProvider)")
	root.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "debug | info | warn | error")

	root.AddCommand(initCmd())
	root.AddCommand(chatCmd())
	root.AddCommand(runCmd())
	root.AddCommand(infoCmd("tools", "List the tool catalog"))
	root.AddCommand(infoCmd("agents", "List agents and their tools"))
	root.AddCommand(versionCmd())
	root.AddCommand(configCmd())
	root.AddCommand(auditCmd())
	root.AddCommand(doctorCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			if _, err := os.Stat(cfgPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
			}
			if err := config.Save(cfgPath, config.Defaults()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfgPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive REPL (default)",
		RunE:  runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cli := channel.NewCLI(channel.CLIConfig{
		Engine:     a.engine,
		ShowIntent: a.cfg.General.ShowIntent,
		Spinner:    true,
		Logger:     a.logger,
		In:         cmd.InOrStdin(),
		Out:        cmd.OutOrStdout(),
	})
	return cli.Start(ctx)
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <request...>",
		Short: "Process a single request and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			plain := channel.PlainStyles()
			cli := channel.NewCLI(channel.CLIConfig{
				Engine:     a.engine,
				ShowIntent: a.cfg.General.ShowIntent,
				Styles:     &plain,
				Logger:     a.logger,
				Out:        cmd.OutOrStdout(),
			})
			if !cli.RunOnce(ctx, strings.Join(args, " ")) {
				return fmt.Errorf("request failed")
			}
			return nil
		},
	}
}

// infoCmd exposes a slash command (/tools, /agents) as a subcommand.
func infoCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(context.Background())
			if err != nil {
				return err
			}
			defer a.Close()
			text, _ := a.engine.HandleCommand(&agent.ChatCommand{Name: name})
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ada v%s\n", version)
		},
	}
}
