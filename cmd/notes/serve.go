package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gonotes/internal/notes/adapters/cache"
	notehttp "gonotes/internal/notes/adapters/http"
	"gonotes/internal/notes/adapters/postgres"
	"gonotes/internal/notes/adapters/services"
	"gonotes/internal/notes/app"
	"gonotes/internal/notes/config"
	"gonotes/internal/notes/db"
	portcache "gonotes/internal/notes/ports/cache"
	"gonotes/internal/notes/ports/repositories"
	"gonotes/internal/notes/resilience"
	"gonotes/pkg/db/redis"
	"gonotes/pkg/logger"
	"gonotes/pkg/shutdown"
)

// Константы для сообщений об ошибках.
const (
	ErrInitDB          = "failed to initialize database"
	ErrCloseDB         = "failed to close database"
	ErrStartHTTPServer = "failed to start HTTP server"
	ErrStopHTTPServer  = "failed to stop HTTP server"
	ErrCloseCache      = "failed to close cache"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted        = "note service started"
	LogServiceShutdownDone   = "note service shutdown complete"
	LogNamedMigrationsFailed = "named migrations failed, continuing startup"
	LogNamedMigrationsDone   = "named migrations completed"
	LogInitRepo              = "initializing repositories"
	LogInitCache             = "initializing note list cache"
	LogCacheDisabled         = "note list cache disabled"
	LogInitServices          = "initializing services"
	LogInitHTTPServer        = "initializing HTTP server"
	LogStartingHTTP          = "starting HTTP server"
	LogStoppingHTTP          = "stopping HTTP server"
	LogClosingCache          = "closing cache connection"
	LogClosingDB             = "closing database connections"

	appName = "notes"
)

func runServe(ctx context.Context) error {
	cfg, log, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	log.Info(ctx, LogServiceStarted,
		zap.String("environment", string(cfg.Logging.GetEnvironment())),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("startup_time", time.Now().Format(time.RFC3339)))

	notesDB, err := db.New(ctx, &cfg.Postgres, cfg.Migrations.Dir)
	if err != nil {
		log.Error(ctx, ErrInitDB, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrInitDB, err)
	}

	if report, err := notesDB.RunMigrations(ctx); err != nil {
		log.Error(ctx, LogNamedMigrationsFailed, zap.Error(err))
	} else {
		log.Info(ctx, LogNamedMigrationsDone, zap.Strings("applied", report.Applied))
	}

	log.Info(ctx, LogInitRepo)
	repoFactory := postgres.NewRepositoryFactory(notesDB.Database())
	noteRepo, noteCache := withCache(ctx, log, &cfg.Redis, repoFactory.NoteRepository())

	log.Info(ctx, LogInitServices)
	serviceFactory := services.NewServiceFactory(cfg.JWT.SecretKey, cfg.JWT.TokenTTL, cfg.JWT.BCryptCost)
	authUseCase := app.NewAuthUseCase(repoFactory.UserRepository(), serviceFactory.PasswordService(), serviceFactory.TokenService())
	noteUseCase := app.NewNoteUseCase(noteRepo)

	log.Info(ctx, LogInitHTTPServer)
	server := notehttp.NewApp(httpConfig(&cfg.HTTP), notehttp.Services{
		Auth:   authUseCase,
		Notes:  noteUseCase,
		Health: notesDB,
	})

	serveCtx, stopServe := context.WithCancel(ctx)
	defer stopServe()

	var listenErr error
	log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
	go func() {
		if err := server.Listen(cfg.HTTP.GetAddress()); err != nil {
			log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
			listenErr = err
			stopServe()
		}
	}()

	shutdown.Wait(serveCtx, cfg.Shutdown.GetTimeout(),
		// Остановка HTTP сервера, затем освобождение хранилищ.
		func(ctx context.Context) error {
			log.Info(ctx, LogStoppingHTTP)
			var errs []error
			if err := server.ShutdownWithContext(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", ErrStopHTTPServer, err))
			}
			if noteCache != nil {
				log.Info(ctx, LogClosingCache)
				if err := noteCache.Close(ctx); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", ErrCloseCache, err))
				}
			}
			log.Info(ctx, LogClosingDB)
			if err := notesDB.Close(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", ErrCloseDB, err))
			}
			return errors.Join(errs...)
		},
	)

	log.Info(ctx, LogServiceShutdownDone)
	if listenErr != nil {
		return fmt.Errorf("%s: %w", ErrStartHTTPServer, listenErr)
	}
	return nil
}

// withCache оборачивает репозиторий заметок кэшем списков, если Redis включен и доступен.
// Недоступный Redis не мешает запуску.
func withCache(
	ctx context.Context,
	log *logger.Logger,
	cfg *config.RedisConfig,
	repo repositories.NoteRepository,
) (repositories.NoteRepository, portcache.Cache) {
	if !cfg.Enabled {
		log.Info(ctx, LogCacheDisabled)
		return repo, nil
	}

	log.Info(ctx, LogInitCache, zap.String("address", cfg.ClientConfig().Address()))
	retry := resilience.NewRetry("redis-connect", resilience.RetryConfig{
		MaxAttempts:    cfg.ConnectAttempts,
		InitialBackoff: cfg.ConnectBackoff,
		MaxBackoff:     cfg.ConnectBackoff * 4,
		BackoffFactor:  2,
	})
	client, err := resilience.Do(ctx, retry, func(ctx context.Context) (*redis.Client, error) {
		return redis.NewClient(ctx, cfg.ClientConfig())
	})
	if err != nil {
		log.Warn(ctx, LogCacheDisabled, zap.Error(err))
		return repo, nil
	}

	noteCache := cache.NewRedisCache(client, cfg.ListTTL)
	breaker := resilience.NewCircuitBreaker("notes-cache", resilience.CircuitBreakerConfig{
		ErrorThreshold:   cfg.MaxFailures,
		Timeout:          cfg.ResetTimeout,
		SuccessThreshold: 1,
	})

	return cache.NewCachedNoteRepository(repo, noteCache, breaker, cfg.ListTTL), noteCache
}

func httpConfig(cfg *config.HTTPConfig) notehttp.Config {
	return notehttp.Config{
		AppName:        appName,
		BodyLimit:      cfg.BodyLimit,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		RequestTimeout: cfg.RequestTimeout,
		LoginRate:      rate.Limit(cfg.LoginRate),
		LoginBurst:     cfg.LoginBurst,
	}
}
