package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gonotes/internal/notes/config"
	"gonotes/pkg/logger"
)

// Константы загрузки конфигурации.
const (
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrSetEnvFile           = "failed to set env file variable"
)

const flagEnvFile = "env-file"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "notes",
		Short:         "Personal notes REST service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envFile, err := cmd.Flags().GetString(flagEnvFile)
			if err != nil || envFile == "" {
				return nil //nolint:nilerr // флаг необязателен
			}
			if err := os.Setenv(config.EnvFileVariable, envFile); err != nil {
				return fmt.Errorf("%s: %w", ErrSetEnvFile, err)
			}
			return nil
		},
	}
	root.PersistentFlags().String(flagEnvFile, "", "path to .env file (overrides "+config.EnvFileVariable+")")

	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema and named migrations, then exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), cmd)
		},
	}
}

// loadConfig загружает конфигурацию и перенастраивает глобальный логгер по ней.
func loadConfig(ctx context.Context) (*config.Config, *logger.Logger, error) {
	log := logger.Log(ctx)

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, ErrLoadConfig, zap.Error(err))
		return nil, nil, fmt.Errorf("%s: %w", ErrLoadConfig, err)
	}

	finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
	if err != nil {
		log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
		return nil, nil, fmt.Errorf("%s: %w", ErrInitLoggerWithConfig, err)
	}
	logger.SetGlobalLogger(finalLogger)

	return cfg, finalLogger, nil
}
