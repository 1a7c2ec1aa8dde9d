package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/antimine/internal/config"
	"github.com/vancomm/antimine/internal/database"
)

func main() {
	log, err := config.NewLogger(os.Stderr, &config.Logging{})
	if err != nil {
		logrus.Fatal("unable to set up logging: ", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	pool, migrator, err := database.ConnectAndMigrate(ctx, database.Migrations)
	if err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}
	defer pool.Close()

	version, dirty, err := migrator.Version()
	if err != nil {
		log.WithError(err).Error("failed to check migration version")
		return
	}
	log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("migration successful")
}
