package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/teilomillet/aiengine/config"
	"github.com/teilomillet/aiengine/server"
)

const Version = "v0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "aiengine: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("aiengine", flag.ContinueOnError)
	configFile := fs.String("config", "aiengine.yaml", "Path to configuration file (defaults are used when it does not exist)")
	validate := fs.Bool("validate", false, "Validate configuration and exit")
	version := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *version {
		fmt.Fprintf(stdout, "aiengine %s\n", Version)
		return nil
	}

	cfg, err := config.LoadFileOrDefaults(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if *validate {
		fmt.Fprintln(stdout, "Configuration is valid")
		return nil
	}

	logger, level, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	opts := []server.Option{server.WithAtomicLevel(level)}

	if _, statErr := os.Stat(*configFile); statErr == nil {
		watcher, err := config.NewConfigWatcher(*configFile, cfg, logger)
		if err != nil {
			logger.Warn("Config hot reload disabled", zap.Error(err))
		} else {
			defer watcher.Close()
			opts = append(opts, server.WithWatcher(watcher))
		}
	} else {
		logger.Info("No config file found, using defaults", zap.String("config_path", *configFile))
	}

	srv, err := server.NewServer(cfg, logger, opts...)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	logger.Info("Starting aiengine",
		zap.String("version", Version),
		zap.String("address", cfg.Server.Addr()),
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model),
	)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
