package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/ireporter/internal/client/cli"
	"github.com/dmitrijs2005/ireporter/internal/client/config"
	"github.com/dmitrijs2005/ireporter/internal/logging"
)

func main() {
	cfg := config.LoadConfig()

	logger, closeLog, err := logging.New(logging.Options{
		Backend: cfg.LogBackend,
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to start", "error", err)
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return
	}
	defer app.Close()

	app.Run(ctx)
}
