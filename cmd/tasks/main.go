package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Novip1906/tasks-http/internal/app"
	"github.com/Novip1906/tasks-http/internal/config"
	"github.com/Novip1906/tasks-http/pkg/logging"
)

func main() {
	cfg := config.MustLoadConfig()

	log := logging.SetupLogger(logging.ParseLevel(cfg.LogLevel))
	log.Info("config loaded", "env", cfg.Env, "storage", cfg.Storage.Driver)

	srv, err := app.NewServer(cfg, log)
	if err != nil {
		log.Error("server init error", logging.Err(err))
		os.Exit(1)
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Error("server run error", logging.Err(err))
		return
	}
	log.Info("server stopped")
}
