package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"matdepot/authctl/internal/cli"
	"matdepot/authctl/internal/config"
	"matdepot/authctl/internal/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := log.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cli.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
