package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"gonotes/pkg/logger"
)

// Константы для сообщений logger именованных миграций.
const (
	LogMigrationsStarting   = "running named migrations"
	LogMigrationSkipped     = "migration already executed"
	LogMigrationRunning     = "running migration"
	LogMigrationCompleted   = "migration completed successfully"
	LogMigrationRolledBack  = "migration rolled back"
	LogMigrationsCompleted  = "named migrations finished"
	ErrEnsureMigrationTable = "failed to ensure migrations table"
	ErrCheckMigration       = "failed to check migration"
	ErrRunMigration         = "failed to run migration"
	ErrRecordMigration      = "failed to record migration"
)

// ErrEmptyMigrationName возвращается для миграции без имени.
var ErrEmptyMigrationName = errors.New("migration name cannot be empty")

const (
	createMigrationsTable = `CREATE TABLE IF NOT EXISTS migrations (
		id SERIAL PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		executed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	selectMigration = `SELECT EXISTS(SELECT 1 FROM migrations WHERE name = $1)`
	insertMigration = `INSERT INTO migrations (name) VALUES ($1)`
)

// Migration - именованное изменение схемы или данных. Имя служит ключом идемпотентности.
type Migration struct {
	Name string
	Up   func(ctx context.Context, tx pgx.Tx) error
}

// MigrationConn - то, что нужно раннеру от соединения.
type MigrationConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Report перечисляет примененные и пропущенные миграции одного запуска.
type Report struct {
	Applied []string
	Skipped []string
}

// Runner применяет миграции строго по порядку, каждую не более одного раза
// за все время жизни базы, каждую в отдельной транзакции.
type Runner struct {
	conn       MigrationConn
	migrations []Migration
}

// NewRunner создает раннер для фиксированного списка миграций.
func NewRunner(conn MigrationConn, migrations ...Migration) *Runner {
	return &Runner{conn: conn, migrations: migrations}
}

// Run применяет все еще не примененные миграции. Первая неудачная миграция
// откатывается и прерывает последовательность; ее ошибка возвращается вызывающему.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogMigrationsStarting, zap.Int("count", len(r.migrations)))

	var report Report

	if _, err := r.conn.Exec(ctx, createMigrationsTable); err != nil {
		log.Error(ctx, ErrEnsureMigrationTable, zap.Error(err))
		return report, fmt.Errorf("%s: %w", ErrEnsureMigrationTable, err)
	}

	for _, m := range r.migrations {
		applied, err := r.apply(ctx, m)
		if err != nil {
			return report, err
		}
		if applied {
			report.Applied = append(report.Applied, m.Name)
		} else {
			report.Skipped = append(report.Skipped, m.Name)
		}
	}

	log.Info(ctx, LogMigrationsCompleted,
		zap.Strings("applied", report.Applied),
		zap.Strings("skipped", report.Skipped))
	return report, nil
}

func (r *Runner) apply(ctx context.Context, m Migration) (bool, error) {
	log := logger.Log(ctx).With(zap.String("migration", m.Name))

	if m.Name == "" {
		return false, ErrEmptyMigrationName
	}

	var exists bool
	if err := r.conn.QueryRow(ctx, selectMigration, m.Name).Scan(&exists); err != nil {
		log.Error(ctx, ErrCheckMigration, zap.Error(err))
		return false, fmt.Errorf("%s %q: %w", ErrCheckMigration, m.Name, err)
	}
	if exists {
		log.Info(ctx, LogMigrationSkipped)
		return false, nil
	}

	log.Info(ctx, LogMigrationRunning)

	err := InTx(ctx, r.conn, func(ctx context.Context, tx pgx.Tx) error {
		if err := m.Up(ctx, tx); err != nil {
			return fmt.Errorf("%s %q: %w", ErrRunMigration, m.Name, err)
		}
		if _, err := tx.Exec(ctx, insertMigration, m.Name); err != nil {
			return fmt.Errorf("%s %q: %w", ErrRecordMigration, m.Name, err)
		}
		return nil
	})
	if err != nil {
		log.Error(ctx, LogMigrationRolledBack, zap.Error(err))
		return false, err
	}

	log.Info(ctx, LogMigrationCompleted)
	return true, nil
}
