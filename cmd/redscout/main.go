package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	clientcmd "github.com/redscout/redscout/internal/cmd/client"
	serverrun "github.com/redscout/redscout/internal/cmd/server"
	cfgpkg "github.com/redscout/redscout/internal/config"
	pebblestore "github.com/redscout/redscout/internal/storage/pebble"
	logpkg "github.com/redscout/redscout/pkg/log"
)

func main() {
	// Load .env before anything reads the environment; a missing file is
	// not an error.
	_ = godotenv.Load()

	level := os.Getenv("REDSCOUT_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	// Redirect standard library logs (used by Pebble) to our logger
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "redscout",
		Short: "Redscout keyword monitor CLI",
		Long:  "Redscout polls Reddit for keyword matches and classifies them with an LLM. This CLI manages the server and basic operations.",
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start redscout server (HTTP API, poller, workers, sweeper)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			httpAddr, _ := cmd.Flags().GetString("http")
			configPath, _ := cmd.Flags().GetString("config")
			fsyncMode, _ := cmd.Flags().GetString("fsync")
			fsyncIntervalMs, _ := cmd.Flags().GetInt("fsync-interval-ms")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")
			noPoller, _ := cmd.Flags().GetBool("no-poller")
			noWorkers, _ := cmd.Flags().GetBool("no-workers")

			mode := pebblestore.FsyncModeAlways
			switch fsyncMode {
			case "never":
				mode = pebblestore.FsyncModeNever
			case "interval":
				mode = pebblestore.FsyncModeInterval
			case "always":
				mode = pebblestore.FsyncModeAlways
			default:
				return fmt.Errorf("invalid --fsync; use always|interval|never")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfgpkg.FromEnv(&cfg)
			if logLevel != "" {
				_ = os.Setenv("REDSCOUT_LOG_LEVEL", logLevel)
			}
			if logFormat != "" {
				_ = os.Setenv("REDSCOUT_LOG_FORMAT", logFormat)
			}
			if err := serverrun.Run(ctx, serverrun.Options{
				DataDir:        dataDir,
				HTTPAddr:       httpAddr,
				Fsync:          mode,
				FsyncInterval:  time.Duration(fsyncIntervalMs) * time.Millisecond,
				Config:         cfg,
				DisablePoller:  noPoller,
				DisableWorkers: noWorkers,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	serverStartCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	serverStartCmd.Flags().String("http", ":8080", "HTTP listen address")
	serverStartCmd.Flags().String("config", "", "Path to JSON config file")
	serverStartCmd.Flags().String("fsync", "always", "Fsync mode: always|interval|never")
	serverStartCmd.Flags().Int("fsync-interval-ms", 5, "When --fsync=interval, group-commit window in ms (default 5)")
	serverStartCmd.Flags().String("log-level", os.Getenv("REDSCOUT_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("REDSCOUT_LOG_FORMAT"), "Log format: text|json (default text)")
	serverStartCmd.Flags().Bool("no-poller", false, "Disable the Reddit poller")
	serverStartCmd.Flags().Bool("no-workers", false, "Disable the in-process worker pool")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// client commands (keyword, queue, poll, worker)
	rootCmd.AddCommand(clientcmd.NewKeywordCommand(apiURL))
	rootCmd.AddCommand(clientcmd.NewQueueCommand(apiURL))
	rootCmd.AddCommand(clientcmd.NewPollCommand(apiURL))
	rootCmd.AddCommand(clientcmd.NewWorkerCommand(apiURL))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("REDSCOUT_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
