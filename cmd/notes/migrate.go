package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gonotes/internal/notes/db"
)

// Константы команды migrate.
const (
	ErrMigrate          = "migration failed"
	LogMigrateCompleted = "migrations completed"
)

func runMigrate(ctx context.Context, cmd *cobra.Command) error {
	cfg, log, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	notesDB, err := db.New(ctx, &cfg.Postgres, cfg.Migrations.Dir)
	if err != nil {
		log.Error(ctx, ErrInitDB, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrInitDB, err)
	}
	defer func() {
		if err := notesDB.Close(ctx); err != nil {
			log.Warn(ctx, ErrCloseDB, zap.Error(err))
		}
	}()

	report, err := notesDB.RunMigrations(ctx)
	if err != nil {
		log.Error(ctx, ErrMigrate, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrMigrate, err)
	}

	log.Info(ctx, LogMigrateCompleted,
		zap.Strings("applied", report.Applied),
		zap.Strings("skipped", report.Skipped))
	cmd.Printf("applied: %s\nskipped: %s\n", strings.Join(report.Applied, ", "), strings.Join(report.Skipped, ", "))
	return nil
}
