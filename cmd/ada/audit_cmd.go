package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ada/internal/audit"
	"ada/internal/config"
)

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the turn log",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "Show recent turns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openAudit()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(context.Background(), limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tROUTE\tCATEGORY\tTOOL\tSTATUS\tINPUT")
			for _, e := range entries {
				status := "ok"
				if !e.Success {
					status = e.ErrorKind
					if status == "" {
						status = "error"
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.StartedAt.Format("2006-01-02 15:04:05"), e.Route, dash(e.Category), dash(e.Tool), status, e.Input)
			}
			return w.Flush()
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "number of turns to show")

	var olderThan time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete old turns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openAudit()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Prune(context.Background(), olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d turn(s)\n", n)
			return nil
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "delete turns older than this")

	cmd.AddCommand(list, prune)
	return cmd
}

func openAudit() (*audit.Store, error) {
	cfg, err := config.LoadOrDefault(resolveConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.General.LogLevel)}))
	return audit.NewStore(cfg.Audit.DBPath, logger)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
