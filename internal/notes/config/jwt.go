package config

import "time"

// JWTConfig содержит настройки для JWT токенов.
type JWTConfig struct {
	SecretKey  string        `yaml:"secret_key" env:"JWT_SECRET_KEY" env-default:"your-secret-key-change-in-production"`
	TokenTTL   time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"24h"`
	BCryptCost int           `yaml:"bcrypt_cost" env:"JWT_BCRYPT_COST" env-default:"10"`
}
