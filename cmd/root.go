package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mindsync-ai/mindsync/internal/config"
	"github.com/mindsync-ai/mindsync/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "mindsync",
	Short: "Read deeper. Remember more.",
	Long: "MindSync is a terminal reading companion: upload a document, pick a vocabulary level,\n" +
		"read it with unfamiliar words highlighted, take a short quiz and chat about it.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("env-file", "", "Path to a .env file (default .env in the working directory)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MINDSYNC_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.Flags().String("api", "", "Base URL of the learning service (overrides MINDSYNC_API_URL)")
	rootCmd.Flags().Bool("no-splash", false, "Skip the welcome animation")
	rootCmd.Flags().Bool("no-voice", false, "Disable microphone input in chat")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads configuration and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Server.DBPath = p
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db / MINDSYNC_DB when
// set, then the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if p := cfg.Server.DBPath; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the backend database for the inspection commands.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, err
	}
	return store.Open(dbPath)
}
