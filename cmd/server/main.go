package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefall/internal/app"
	"github.com/vancomm/minefall/internal/config"
	"github.com/vancomm/minefall/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log, err := logging.New(logging.OptionsFrom(cfg))
	if err != nil {
		logrus.WithError(err).Fatal("failed to set up logging")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.WithFields(logrus.Fields{
		"port":        cfg.Port,
		"development": cfg.Development,
		"game":        cfg.Game,
	}).Info("starting")

	if err := app.New(log, cfg).Start(ctx); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}
