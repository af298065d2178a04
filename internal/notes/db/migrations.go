package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"gonotes/pkg/db/postgres"
)

// Имена именованных миграций. Имя фиксируется в таблице migrations навсегда.
const (
	MigrationPerformanceIndexes = "001_add_performance_indexes"
	MigrationAnalyzeTables      = "002_analyze_tables"
)

var performanceIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_notes_user_id ON notes(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_updated_at ON notes(updated_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_user_updated ON notes(user_id, updated_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_id_user ON notes(id, user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
}

// Migrations возвращает именованные миграции сервиса в порядке применения.
func Migrations() []postgres.Migration {
	return []postgres.Migration{
		{Name: MigrationPerformanceIndexes, Up: execAll(performanceIndexes...)},
		{Name: MigrationAnalyzeTables, Up: execAll(`ANALYZE`)},
	}
}

func execAll(statements ...string) func(ctx context.Context, tx pgx.Tx) error {
	return func(ctx context.Context, tx pgx.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("%q: %w", stmt, err)
			}
		}
		return nil
	}
}
