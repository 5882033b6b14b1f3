package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docveil/docveil/internal/config"
	"github.com/docveil/docveil/internal/events"
	"github.com/docveil/docveil/internal/logger"
	"github.com/docveil/docveil/internal/pipeline"
	"github.com/docveil/docveil/internal/server"
	"github.com/docveil/docveil/internal/watcher"
	"go.uber.org/zap"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	// Parse command line flags
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		rulesPath   = flag.String("rules", "", "Path to rule file (overrides config)")
		outputDir   = flag.String("output", "", "Output directory (overrides config)")
		mode        = flag.String("mode", "serve", "Run mode: serve, watch, or run")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	// Show version and exit
	if *showVersion {
		fmt.Printf("docveil %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *rulesPath != "" {
		cfg.Rules.Path = *rulesPath
	}
	if *outputDir != "" {
		cfg.Dirs.Output = *outputDir
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if cfg.Logging.File.Enabled {
		loggerConfig.File = &logger.FileConfig{
			Enabled: true,
			Path:    cfg.Logging.File.Path,
		}
	}

	log, err := logger.New(loggerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting docveil",
		zap.String("version", version),
		zap.String("mode", *mode),
		zap.String("rules_path", cfg.Rules.Path),
	)

	switch *mode {
	case "run":
		os.Exit(runBatch(cfg, log, flag.Args()))
	case "watch":
		runWatcher(cfg, log)
	case "serve":
		runServer(cfg, log)
	default:
		fmt.Fprintf(os.Stderr, "Unknown mode %q (must be serve, watch, or run)\n", *mode)
		os.Exit(1)
	}
}

// runBatch anonymizes the given files and exits nonzero if any failed.
func runBatch(cfg *config.Config, log *logger.Logger, paths []string) int {
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "run mode needs at least one file argument")
		return 1
	}

	pipe := pipeline.New(cfg.Rules.Path, cfg.Dirs.Output, log, nil)
	failed := 0
	for _, result := range pipe.Run(paths) {
		if result.Status == pipeline.StatusRedacted {
			fmt.Printf("redacted  %s -> %s (%d matches)\n", result.Path, result.Output, result.Matches)
		} else {
			failed++
			fmt.Printf("failed    %s: %s\n", result.Path, result.Reason())
		}
	}
	if failed > 0 {
		return 1
	}
	return 0
}

// runWatcher processes documents dropped into the input directory until
// interrupted.
func runWatcher(cfg *config.Config, log *logger.Logger) {
	hub := events.NewHub(log.WithComponent("events").Logger)
	go hub.Run()

	pipe := pipeline.New(cfg.Rules.Path, cfg.Dirs.Output, log, hub)
	w, err := watcher.New(cfg.Dirs.Input, cfg.Watcher, pipe, log)
	if err != nil {
		log.Fatal("Failed to create watcher", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("Watcher error", zap.Error(err))
	}
	log.Info("Watcher shutdown complete")
}

// runServer starts the upload server with graceful shutdown.
func runServer(cfg *config.Config, log *logger.Logger) {
	hub := events.NewHub(log.WithComponent("events").Logger)

	srv, err := server.New(cfg, log, hub)
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Error("Server error", zap.Error(err))
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Stop(ctx); err != nil {
			log.Error("Failed to shutdown server gracefully", zap.Error(err))
			os.Exit(1)
		}

		log.Info("Server shutdown complete")
	}
}
