// Package db предоставляет функционал для работы с базой данных сервиса заметок.
package db

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"gonotes/internal/notes/config"
	"gonotes/internal/notes/resilience"
	"gonotes/pkg/db/postgres"
	"gonotes/pkg/logger"
	"gonotes/pkg/pool"
)

// Константы для сообщений logger.
const (
	LogDBInitializing    = "initializing notes database"
	LogDBInitialized     = "notes database initialized successfully"
	LogMigrationStarting = "starting schema migrations for notes service"
)

// Константы для сообщений об ошибках.
const (
	ErrDBMigrations      = "failed to apply notes database migrations"
	ErrDBConnection      = "failed to connect to notes database"
	ErrGetPath           = "failed to get path"
	ErrDBCheckConnection = "error checking the database connection"
	ErrNamedMigrations   = "failed to run named migrations"
	ErrCloseDatabase     = "failed to close notes database"
)

const filePrefix = "file://"

// DB представляет соединение с базой данных сервиса заметок.
type DB struct {
	database *postgres.Database
}

// MigrateSchema применяет SQL-миграции схемы из migrationsDir.
func MigrateSchema(ctx context.Context, cfg *config.PostgresConfig, migrationsDir string) error {
	migrationsPath, err := sourceURL(migrationsDir)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrDBMigrations, err)
	}

	logger.Log(ctx).Info(ctx, LogMigrationStarting, zap.String("migrations_path", migrationsPath))
	if err := postgres.MigrateDSN(ctx, cfg.GetConnectionURL(), migrationsPath); err != nil {
		return fmt.Errorf("%s: %w", ErrDBMigrations, err)
	}
	return nil
}

// New применяет миграции схемы и подключается к базе, повторяя попытки подключения
// согласно cfg.ConnectAttempts и cfg.ConnectBackoff.
func New(ctx context.Context, cfg *config.PostgresConfig, migrationsDir string) (*DB, error) {
	log := logger.Log(ctx)

	log.Info(ctx, LogDBInitializing,
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.Int("max_conn", cfg.MaxConn))

	if err := MigrateSchema(ctx, cfg, migrationsDir); err != nil {
		return nil, err
	}

	retry := resilience.NewRetry("postgres-connect", resilience.RetryConfig{
		MaxAttempts:    cfg.ConnectAttempts,
		InitialBackoff: cfg.ConnectBackoff,
		MaxBackoff:     cfg.ConnectBackoff * 8,
		BackoffFactor:  2,
	})

	database, err := resilience.Do(ctx, retry, func(ctx context.Context) (*postgres.Database, error) {
		return postgres.New(ctx, cfg.GetDSN(), cfg.MaxConn)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBConnection, err)
	}

	log.Info(ctx, LogDBInitialized)

	return &DB{database: database}, nil
}

// RunMigrations применяет именованные миграции через основное соединение.
func (db *DB) RunMigrations(ctx context.Context) (postgres.Report, error) {
	report, err := postgres.NewRunner(db.database.Primary(), Migrations()...).Run(ctx)
	if err != nil {
		return report, fmt.Errorf("%s: %w", ErrNamedMigrations, err)
	}
	return report, nil
}

// Close закрывает соединения с базой данных.
func (db *DB) Close(ctx context.Context) error {
	if err := db.database.Close(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrCloseDatabase, err)
	}
	return nil
}

// Ping проверяет соединение с базой данных.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.database.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrDBCheckConnection, err)
	}
	return nil
}

// Stats возвращает состояние пула соединений.
func (db *DB) Stats() pool.Stats {
	return db.database.Stats()
}

// Database возвращает доступ к базовой реализации для репозиториев.
func (db *DB) Database() *postgres.Database {
	return db.database
}

func sourceURL(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return filePrefix + dir, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrGetPath, err)
	}
	return filePrefix + abs, nil
}
