// Package cache содержит реализацию кэширования с использованием Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gonotes/internal/notes/ports/cache"
	"gonotes/pkg/db/redis"
	"gonotes/pkg/logger"
)

// Константы для логирования.
const (
	LogMethodGet    = "get"
	LogMethodSet    = "set"
	LogMethodDelete = "delete"
	LogMethodIncr   = "incr"

	ErrorFailedToGet    = "failed to get value from redis"
	ErrorFailedToSet    = "failed to set value in redis"
	ErrorFailedToDelete = "failed to delete value from redis"
	ErrorFailedToIncr   = "failed to increment value in redis"
	ErrorFailedToClose  = "failed to close redis connection"
)

// RedisCache реализует интерфейс Cache с использованием Redis.
type RedisCache struct {
	client     *redis.Client
	defaultTTL time.Duration
}

// NewRedisCache создает кэш поверх уже подключенного клиента.
func NewRedisCache(client *redis.Client, defaultTTL time.Duration) cache.Cache {
	return &RedisCache{
		client:     client,
		defaultTTL: defaultTTL,
	}
}

// Get получает значение по ключу. Промах - это ("", nil).
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return "", nil
		}
		logger.Log(ctx).Debug(ctx, ErrorFailedToGet,
			zap.String("method", LogMethodGet), zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("%s: %w", ErrorFailedToGet, err)
	}

	return value, nil
}

// Set устанавливает значение для ключа. Нулевой ttl заменяется на ttl по умолчанию.
func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	if err := c.client.Set(ctx, key, value, ttl); err != nil {
		logger.Log(ctx).Debug(ctx, ErrorFailedToSet,
			zap.String("method", LogMethodSet), zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToSet, err)
	}

	return nil
}

// Delete удаляет значение по ключу.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Delete(ctx, key); err != nil {
		logger.Log(ctx).Debug(ctx, ErrorFailedToDelete,
			zap.String("method", LogMethodDelete), zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToDelete, err)
	}

	return nil
}

// Incr увеличивает счетчик по ключу.
func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	value, err := c.client.Incr(ctx, key)
	if err != nil {
		logger.Log(ctx).Debug(ctx, ErrorFailedToIncr,
			zap.String("method", LogMethodIncr), zap.String("key", key), zap.Error(err))
		return 0, fmt.Errorf("%s: %w", ErrorFailedToIncr, err)
	}
	return value, nil
}

// Close закрывает соединение с Redis.
func (c *RedisCache) Close(ctx context.Context) error {
	if err := c.client.Close(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToClose, err)
	}
	return nil
}
