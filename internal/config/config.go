// Package config loads client and server settings from defaults, an
// optional .env file and MINDSYNC_* environment variables. Command-line
// flags are applied on top by the cmd package.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mindsync-ai/mindsync/internal/llm"
	"github.com/mindsync-ai/mindsync/internal/voice"
)

// Config is the complete application configuration.
type Config struct {
	Client ClientConfig
	Server ServerConfig
	Log    LogConfig
	LLM    llm.Config
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	APIURL          string        // MINDSYNC_API_URL
	RequestTimeout  time.Duration // MINDSYNC_REQUEST_TIMEOUT
	RecorderCommand string        // MINDSYNC_RECORDER
}

// ServerConfig configures the development backend.
type ServerConfig struct {
	Addr           string   // MINDSYNC_ADDR
	DBPath         string   // MINDSYNC_DB; empty means the XDG default
	AllowedOrigins []string // MINDSYNC_CORS_ORIGINS, comma separated
	MaxUploadBytes int64    // MINDSYNC_MAX_UPLOAD_BYTES
	CacheTTL       time.Duration
}

// LogConfig configures structured logging.
type LogConfig struct {
	File  string // MINDSYNC_LOG_FILE; empty means the XDG state default
	Level string // MINDSYNC_LOG_LEVEL
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Client: ClientConfig{
			APIURL:          "http://localhost:8080",
			RequestTimeout:  60 * time.Second,
			RecorderCommand: voice.DefaultCommand,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			MaxUploadBytes: 10 << 20,
			CacheTTL:       30 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
		LLM: llm.DefaultConfig(),
	}
}

// Load reads envFile (when it exists) into the process environment without
// overriding variables that are already set, then builds a Config. An empty
// envFile means ".env" in the working directory.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}
	return FromEnv()
}

// FromEnv builds a Config from defaults and MINDSYNC_* variables.
func FromEnv() (Config, error) {
	cfg := Default()

	cfg.Client.APIURL = getEnv("MINDSYNC_API_URL", cfg.Client.APIURL)
	cfg.Client.RecorderCommand = getEnv("MINDSYNC_RECORDER", cfg.Client.RecorderCommand)

	var err error
	if cfg.Client.RequestTimeout, err = getEnvDuration("MINDSYNC_REQUEST_TIMEOUT", cfg.Client.RequestTimeout); err != nil {
		return Config{}, err
	}

	cfg.Server.Addr = getEnv("MINDSYNC_ADDR", cfg.Server.Addr)
	cfg.Server.DBPath = getEnv("MINDSYNC_DB", cfg.Server.DBPath)
	if v := os.Getenv("MINDSYNC_CORS_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("MINDSYNC_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("MINDSYNC_MAX_UPLOAD_BYTES: invalid size %q", v)
		}
		cfg.Server.MaxUploadBytes = n
	}
	if cfg.Server.CacheTTL, err = getEnvDuration("MINDSYNC_CACHE_TTL", cfg.Server.CacheTTL); err != nil {
		return Config{}, err
	}

	cfg.Log.File = getEnv("MINDSYNC_LOG_FILE", cfg.Log.File)
	cfg.Log.Level = getEnv("MINDSYNC_LOG_LEVEL", cfg.Log.Level)

	if os.Getenv("MINDSYNC_LLM_PROVIDER") != "" {
		cfg.LLM = llm.ConfigFromEnv()
	} else if discovered, ok := llm.DiscoverConfig(); ok {
		cfg.LLM = discovered
	} else {
		cfg.LLM = llm.ConfigFromEnv()
	}

	return cfg, nil
}

// DefaultLogPath resolves the log file path:
// 1. $XDG_STATE_HOME/mindsync/<name>.log
// 2. ~/.local/state/mindsync/<name>.log
func DefaultLogPath(name string) (string, error) {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "mindsync", name+".log"), nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, v)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
