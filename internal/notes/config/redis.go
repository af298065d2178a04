package config

import (
	"time"

	"gonotes/pkg/db/redis"
)

// RedisConfig представляет конфигурацию кэша списков заметок.
type RedisConfig struct {
	Enabled      bool          `yaml:"enabled" env:"NOTES_REDIS_ENABLED" env-default:"false"`
	Host         string        `yaml:"host" env:"NOTES_REDIS_HOST" env-default:"localhost"`
	Port         int           `yaml:"port" env:"NOTES_REDIS_PORT" env-default:"6379"`
	Password     string        `yaml:"password" env:"NOTES_REDIS_PASSWORD" env-default:""`
	DB           int           `yaml:"db" env:"NOTES_REDIS_DB" env-default:"0"`
	PoolSize     int           `yaml:"pool_size" env:"NOTES_REDIS_POOL_SIZE" env-default:"10"`
	Timeout      time.Duration `yaml:"timeout" env:"NOTES_REDIS_TIMEOUT" env-default:"3s"`
	ListTTL      time.Duration `yaml:"list_ttl" env:"NOTES_REDIS_LIST_TTL" env-default:"5m"`
	MaxFailures  int           `yaml:"max_failures" env:"NOTES_REDIS_MAX_FAILURES" env-default:"5"`
	ResetTimeout time.Duration `yaml:"reset_timeout" env:"NOTES_REDIS_RESET_TIMEOUT" env-default:"30s"`

	ConnectAttempts int           `yaml:"connect_attempts" env:"NOTES_REDIS_CONNECT_ATTEMPTS" env-default:"3"`
	ConnectBackoff  time.Duration `yaml:"connect_backoff" env:"NOTES_REDIS_CONNECT_BACKOFF" env-default:"500ms"`
}

// ClientConfig переводит настройки в конфигурацию общего клиента Redis.
func (c *RedisConfig) ClientConfig() *redis.Config {
	return &redis.Config{
		Host:     c.Host,
		Port:     c.Port,
		Password: c.Password,
		DB:       c.DB,
		PoolSize: c.PoolSize,
		Timeout:  c.Timeout,
	}
}
