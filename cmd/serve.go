package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mindsync-ai/mindsync/internal/config"
	"github.com/mindsync-ai/mindsync/internal/llm"
	"github.com/mindsync-ai/mindsync/internal/logging"
	"github.com/mindsync-ai/mindsync/internal/server"
	"github.com/mindsync-ai/mindsync/internal/store"
	"github.com/mindsync-ai/mindsync/internal/tutor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the development backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		logFile := cfg.Log.File
		if logFile == "" {
			if logFile, err = config.DefaultLogPath("server"); err != nil {
				return err
			}
		}
		logger, closeLog, err := logging.New(logging.Options{
			File:    logFile,
			Level:   cfg.Log.Level,
			Console: os.Stderr,
		})
		if err != nil {
			return err
		}
		defer closeLog()

		dbPath, err := resolveDBPath(cfg)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), logger.Named("llm"))
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		tcfg := tutor.DefaultConfig()
		tcfg.Timeout = cfg.LLM.Timeout
		tcfg.CacheTTL = cfg.Server.CacheTTL

		srv := server.New(
			tutor.New(provider, st.ProfileRepo(), tcfg, logger),
			st.ProfileRepo(),
			server.Options{
				Addr:           cfg.Server.Addr,
				AllowedOrigins: cfg.Server.AllowedOrigins,
				MaxUploadBytes: cfg.Server.MaxUploadBytes,
				Ping:           func(ctx context.Context) error { return st.DB().PingContext(ctx) },
				Logger:         logger,
			},
		)

		logger.Info("backend ready",
			zap.String("db", dbPath),
			zap.String("provider", cfg.LLM.Provider),
			zap.String("model", provider.ModelID()),
		)
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides MINDSYNC_ADDR)")
}
