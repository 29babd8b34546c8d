package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"netita/server/config"
	"netita/server/internal/api"
	"netita/server/internal/database"
)

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	gin.SetMode(cfg.Server.GinMode)

	logger.Infof("Using database at: %s", cfg.Database.Path)
	db, err := database.NewDatabase(cfg.Database.Path, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize database")
		return err
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Error("Failed to run database migrations")
		return err
	}

	// The catalog is optional; a bad seed file leaves the store empty.
	if n, err := db.SeedProperties(cfg.Database.SeedPath); err != nil {
		logger.WithError(err).Warn("Could not initialize properties store")
	} else if n > 0 {
		logger.WithField("count", n).Info("Seeded properties store")
	}

	handler := api.NewHandler(db, newAnalyzer(cfg, logger), logger)
	router := api.NewRouter(handler, logger, api.RouterOptions{
		CORSOrigins:  cfg.Server.CORSOrigins,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})

	srv := api.NewServer(cfg.Server.Port, router, logger)
	port, err := srv.Listen()
	if err != nil {
		return err
	}
	logger.Infof("Netita Properties running on http://localhost:%d", port)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		return err
	}
	return <-errCh
}
