package cmd

import (
	"errors"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mindsync-ai/mindsync/internal/api"
	"github.com/mindsync-ai/mindsync/internal/app"
	"github.com/mindsync-ai/mindsync/internal/config"
	"github.com/mindsync-ai/mindsync/internal/logging"
	"github.com/mindsync-ai/mindsync/internal/voice"
)

// runApp builds the service client and recorder, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if u, _ := cmd.Flags().GetString("api"); u != "" {
		cfg.Client.APIURL = u
	}

	logFile := cfg.Log.File
	if logFile == "" {
		if logFile, err = config.DefaultLogPath("mindsync"); err != nil {
			return err
		}
	}
	// The terminal belongs to the UI, so the client logs to its file only.
	logger, closeLog, err := logging.New(logging.Options{File: logFile, Level: cfg.Log.Level})
	if err != nil {
		return err
	}
	defer closeLog()

	client := api.New(cfg.Client.APIURL,
		api.WithTimeout(cfg.Client.RequestTimeout),
		api.WithLogger(logger.Named("api")),
	)

	opts := app.Options{
		Services: client,
		Logger:   logger,
		Splash:   true,
	}
	if noSplash, _ := cmd.Flags().GetBool("no-splash"); noSplash {
		opts.Splash = false
	}
	if noVoice, _ := cmd.Flags().GetBool("no-voice"); !noVoice {
		rec, err := voice.NewExecRecorder(cfg.Client.RecorderCommand)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Voice input unavailable:", err)
			logger.Warn("recorder disabled", zap.Error(err))
		} else {
			opts.Recorder = rec
		}
	}

	logger.Info("starting", zap.String("api", client.BaseURL()))
	err = app.Run(cmd.Context(), opts)
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
