package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/antimine/internal/app"
	"github.com/vancomm/antimine/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging, err := config.NewLogging()
	if err != nil {
		logrus.Fatal("unable to read logging config: ", err)
	}
	log, err := config.NewLogger(os.Stderr, logging)
	if err != nil {
		logrus.Fatal("unable to set up logging: ", err)
	}

	log.WithField("development", config.Development()).Info("starting up")

	if err := app.New(log).Start(ctx); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
	log.Info("server stopped")
}
