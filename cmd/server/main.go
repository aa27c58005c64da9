package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"sacco-ledger/internal/adapters/http/middleware"
	"sacco-ledger/internal/adapters/http/routes"
	"sacco-ledger/internal/adapters/persistence/models"
	"sacco-ledger/internal/config"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	if cfg.IsProd() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}

	if err := models.AutoMigrate(db); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	if err := config.Seed(db); err != nil {
		logrus.WithError(err).Fatal("failed to seed data")
	}

	app := fiber.New(fiber.Config{
		AppName:      "sacco-ledger",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	middleware.Setup(app, cfg)
	cron := routes.Setup(app, db, cfg)

	if err := cron.Start(); err != nil {
		logrus.WithError(err).Fatal("failed to start cron scheduler")
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()
	logrus.WithField("port", cfg.Port).Info("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down")
	cron.Stop()

	if err := app.Shutdown(); err != nil {
		logrus.WithError(err).Error("server shutdown failed")
	}
	if err := config.CloseDatabase(db); err != nil {
		logrus.WithError(err).Error("database close failed")
	}

	logrus.Info("shutdown complete")
}
