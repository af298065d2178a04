// Package config содержит конфигурацию сервиса заметок.
package config

import (
	"context"
	"os"

	"go.uber.org/zap"

	pkgconfig "gonotes/pkg/config"
	"gonotes/pkg/logger"
)

const (
	serviceName = "notes"

	// EnvFileVariable задает путь к необязательному .env файлу.
	EnvFileVariable = "NOTES_ENV_FILE"
	// DefaultEnvFile используется, если EnvFileVariable не задана.
	DefaultEnvFile = "deploy/.env"

	LogConfigSummary = "notes service configuration"
)

// Config представляет полную конфигурацию сервиса заметок.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Migrations MigrationsConfig `yaml:"migrations"`
	JWT        JWTConfig        `yaml:"jwt"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
	Shutdown   ShutdownConfig   `yaml:"shutdown"`
}

// Load загружает конфигурацию из .env файла (если он есть) и переменных окружения.
func Load(ctx context.Context) (*Config, error) {
	envFile := os.Getenv(EnvFileVariable)
	if envFile == "" {
		envFile = DefaultEnvFile
	}

	cfg, err := pkgconfig.Load[Config](ctx, serviceName, envFile)
	if err != nil {
		return nil, err
	}

	logger.Log(ctx).Info(ctx, LogConfigSummary,
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.Duration("request_timeout", cfg.HTTP.RequestTimeout),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.Int("postgres_max_conn", cfg.Postgres.MaxConn),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode))

	return cfg, nil
}
