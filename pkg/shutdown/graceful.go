// Package shutdown предоставляет функциональность для корректного завершения приложения
// путем ожидания сигналов SIGINT и SIGTERM или отмены контекста.
package shutdown

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gonotes/pkg/logger"
)

const (
	LogShutdownStarted  = "shutdown started"
	LogShutdownTimedOut = "shutdown timed out, some hooks did not finish"
	LogHookFailed       = "shutdown hook failed"
)

// Hook - функция освобождения ресурса при завершении.
type Hook func(context.Context) error

// Wait блокирует выполнение до получения SIGINT/SIGTERM или отмены ctx,
// затем параллельно выполняет хуки в рамках заданного timeout.
func Wait(ctx context.Context, timeout time.Duration, hooks ...Hook) {
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	Run(context.WithoutCancel(ctx), timeout, hooks...)
}

// Run выполняет хуки параллельно и ждет их завершения не дольше timeout.
func Run(ctx context.Context, timeout time.Duration, hooks ...Hook) {
	log := logger.Log(ctx)
	log.Info(ctx, LogShutdownStarted, zap.Int("hooks", len(hooks)), zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var wg sync.WaitGroup
	for i, hook := range hooks {
		wg.Add(1)
		go func(idx int, fn Hook) {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				log.Error(ctx, LogHookFailed, zap.Int("hook", idx), zap.Error(err))
			}
		}(i, hook)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Warn(ctx, LogShutdownTimedOut)
	}
}
