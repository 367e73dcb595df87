package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/coursecat/internal/services"
	"github.com/desertthunder/coursecat/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config, err := shared.LoadConfig("config.toml")
	if err != nil {
		if !errors.Is(err, shared.ErrMissingConfig) {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
		config = shared.DefaultConfig()
	}
	config.ApplyEnv(os.Getenv)
	shared.SetLogLevel(logger, shared.ParseLevel(config.Log.Level))

	if err := config.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}

	connector, closeConnector, err := services.Open(config, nil, logger)
	if err != nil {
		logger.Fatalf("failed to open remote: %v", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:    config,
		Connector: connector,
		Logger:    logger,
	})

	app := &cli.Command{
		Name:     "coursecat",
		Usage:    "Browse a course catalog and track completion against a remote courses table",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	err = app.Run(context.Background(), os.Args)
	if cerr := closeConnector(); cerr != nil {
		logger.Warn("failed to close remote", "error", cerr)
	}

	if err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
