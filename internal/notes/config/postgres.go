package config

import (
	"fmt"
	"time"
)

// PostgresConfig содержит настройки подключения к базе данных.
type PostgresConfig struct {
	Host     string `yaml:"host" env:"NOTES_POSTGRES_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"NOTES_POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"NOTES_POSTGRES_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"NOTES_POSTGRES_PASSWORD" env-default:"postgres"`
	Database string `yaml:"database" env:"NOTES_POSTGRES_DB" env-default:"notes"`
	SSLMode  string `yaml:"ssl_mode" env:"NOTES_POSTGRES_SSL_MODE" env-default:"disable"`
	MaxConn  int    `yaml:"max_conn" env:"NOTES_POSTGRES_MAX_CONN" env-default:"10"`

	ConnectAttempts int           `yaml:"connect_attempts" env:"NOTES_POSTGRES_CONNECT_ATTEMPTS" env-default:"5"`
	ConnectBackoff  time.Duration `yaml:"connect_backoff" env:"NOTES_POSTGRES_CONNECT_BACKOFF" env-default:"500ms"`
}

// GetDSN возвращает строку подключения к Postgres.
func (p *PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// GetConnectionURL возвращает URL-строку подключения для миграций.
func (p *PostgresConfig) GetConnectionURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MigrationsConfig указывает, где лежат SQL-миграции схемы.
type MigrationsConfig struct {
	Dir string `yaml:"dir" env:"NOTES_MIGRATIONS_DIR" env-default:"./migrations/notes"`
}
