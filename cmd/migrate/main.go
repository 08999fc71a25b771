// Command migrate creates or updates the user store schema and exits.
package main

import (
	"log/slog"
	"os"

	"authsvc/config"
	logs "authsvc/internal/infra/log"
	"authsvc/internal/infra/persistence/gormstore"

	"github.com/pkg/errors"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Migration failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	logger, err := logs.New(logs.Params{Config: cfg})
	if err != nil {
		return errors.Wrap(err, "build logger")
	}

	db, err := gormstore.Open(cfg, logger)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql.DB")
	}
	defer sqlDB.Close()

	if err := gormstore.Migrate(db); err != nil {
		return err
	}

	logger.Info("Database schema is up to date", slog.String("driver", cfg.Database.Driver))

	return nil
}
