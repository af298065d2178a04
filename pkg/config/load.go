// Package config предоставляет функциональность для загрузки конфигурации из переменных окружения.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"gonotes/pkg/logger"
)

const (
	msgLoadingConfiguration    = "loading configuration"
	msgConfigurationLoaded     = "configuration loaded successfully"
	msgEnvFileLoaded           = "environment file loaded"
	msgEnvFileMissing          = "environment file not found, using process environment"
	msgFailedLoadConfiguration = "failed to load configuration"

	errFailedLoadEnvFile       = "failed to load environment file"
	errFailedLoadConfiguration = "failed to load configuration"

	attrService = "service"
	attrPath    = "path"
)

// Load читает конфигурацию типа T из переменных окружения.
// Если envPath не пуст и файл существует, он загружается через godotenv;
// переменные процесса имеют приоритет над значениями из файла.
func Load[T any](ctx context.Context, serviceName, envPath string) (*T, error) {
	log := logger.Log(ctx)

	log.Info(ctx, msgLoadingConfiguration,
		zap.String(attrService, serviceName),
		zap.String(attrPath, envPath))

	if envPath != "" {
		err := godotenv.Load(envPath)
		switch {
		case err == nil:
			log.Debug(ctx, msgEnvFileLoaded, zap.String(attrPath, envPath))
		case errors.Is(err, fs.ErrNotExist):
			log.Debug(ctx, msgEnvFileMissing, zap.String(attrPath, envPath))
		default:
			log.Error(ctx, errFailedLoadEnvFile, zap.String(attrPath, envPath), zap.Error(err))
			return nil, fmt.Errorf("%s: %w", errFailedLoadEnvFile, err)
		}
	}

	var cfg T
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Error(ctx, msgFailedLoadConfiguration,
			zap.String(attrService, serviceName),
			zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errFailedLoadConfiguration, err)
	}

	log.Info(ctx, msgConfigurationLoaded, zap.String(attrService, serviceName))

	return &cfg, nil
}
