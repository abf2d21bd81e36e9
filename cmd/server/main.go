package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Haarush2006/OpsBoard-BE/internal/app"
	"github.com/Haarush2006/OpsBoard-BE/internal/config"
	"github.com/Haarush2006/OpsBoard-BE/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("auth-service", "info").Error("load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.ServiceName, os.Getenv("LOG_LEVEL"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("bootstrap", "error", err)
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		log.Error("run", "error", err)
		os.Exit(1)
	}
}
