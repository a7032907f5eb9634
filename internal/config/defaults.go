package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel:        "info",
			DefaultProvider: "openai",
			ShowIntent:      true,
		},
		Providers: map[string]ProviderConfig{
			"openai": {
				Enabled:        true,
				APIBase:        "https://api.openai.com/v1",
				Model:          "gpt-4o",
				MaxTokens:      4096,
				TimeoutSeconds: 60,
			},
			"anthropic": {
				Enabled:        false,
				Model:          "claude-3-5-sonnet-latest",
				MaxTokens:      4096,
				TimeoutSeconds: 60,
			},
			"ollama": {
				Enabled:        false,
				APIBase:        "http://localhost:11434",
				Model:          "llama3.1:8b",
				TimeoutSeconds: 120,
			},
			"gemini": {
				Enabled:        false,
				Model:          "gemini-2.5-flash",
				MaxTokens:      4096,
				TimeoutSeconds: 60,
			},
		},
		Routing: RoutingConfig{
			DirectCommands: true,
			ContextLines:   2,
		},
		Tools: ToolsConfig{
			Shell: ShellToolConfig{
				Timeout:        30,
				MaxOutputBytes: 65536,
			},
			Git: GitToolConfig{
				Timeout: 30,
			},
			Web: WebToolConfig{
				Timeout:  30,
				MaxBytes: 5 * 1024 * 1024,
			},
			Read: ReadToolConfig{
				MaxBytes: 256 * 1024,
			},
			Tree: TreeToolConfig{
				MaxDepth: 3,
			},
		},
		Audit: AuditConfig{
			Enabled:       false,
			DBPath:        "~/.ada/audit.db",
			RetentionDays: 30,
		},
	}
}
