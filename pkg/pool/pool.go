// Package pool реализует ограниченный пул дескрипторов соединений
// с очередью ожидающих в порядке поступления.
package pool

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"gonotes/pkg/logger"
)

// Ошибки пула.
var (
	ErrClosed         = errors.New("pool is closed")
	ErrInvalidSize    = errors.New("pool size must be positive")
	ErrAcquireTimeout = errors.New("timed out waiting for a pooled connection")
	ErrOpen           = errors.New("failed to open pooled connection")
)

// Константы для сообщений logger.
const (
	LogOpenFailed      = "failed to open pooled handle"
	LogCloseFailed     = "failed to close pooled handle"
	LogWaiting         = "pool saturated, waiting for a handle"
	LogClosingIdle     = "closing idle pooled handles"
	LogAcquireCanceled = "acquire canceled while waiting"
)

// Handle - дескриптор, которым управляет пул.
type Handle interface {
	Close(ctx context.Context) error
}

// Opener открывает новый дескриптор.
type Opener[T Handle] func(ctx context.Context) (T, error)

// Stats - мгновенный снимок состояния пула.
type Stats struct {
	Max         int `json:"max"`
	Outstanding int `json:"outstanding"`
	Idle        int `json:"idle"`
	Waiting     int `json:"waiting"`
}

// grant передается ожидающему: либо готовый дескриптор,
// либо зарезервированный слот (fresh), либо сигнал закрытия пула.
type grant[T Handle] struct {
	handle T
	fresh  bool
	closed bool
}

// Pool ограничивает число одновременно открытых дескрипторов значением maxConns.
// Outstanding считает все открытые дескрипторы: выданные и простаивающие.
type Pool[T Handle] struct {
	open     Opener[T]
	maxConns int

	mu          sync.Mutex
	idle        []T
	outstanding int
	waiters     *list.List // элементы: chan grant[T]
	closed      bool
}

// New создает пул с максимумом maxConns одновременно открытых дескрипторов.
func New[T Handle](open Opener[T], maxConns int) (*Pool[T], error) {
	if maxConns < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, maxConns)
	}
	return &Pool[T]{
		open:     open,
		maxConns: maxConns,
		waiters:  list.New(),
	}, nil
}

// Acquire возвращает дескриптор: простаивающий, новый (если есть свободный слот)
// или первый освободившийся. Ожидание прерывается отменой ctx.
func (p *Pool[T]) Acquire(ctx context.Context) (T, error) {
	var zero T

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return zero, ErrClosed
	}

	if n := len(p.idle); n > 0 {
		h := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return h, nil
	}

	if p.outstanding < p.maxConns {
		p.outstanding++
		p.mu.Unlock()
		return p.openReserved(ctx)
	}

	ch := make(chan grant[T], 1)
	elem := p.waiters.PushBack(ch)
	waiting := p.waiters.Len()
	p.mu.Unlock()

	logger.Log(ctx).Debug(ctx, LogWaiting, zap.Int("waiting", waiting), zap.Int("max", p.maxConns))

	select {
	case g := <-ch:
		return p.accept(ctx, g)
	case <-ctx.Done():
		p.mu.Lock()
		select {
		case g := <-ch:
			// Дескриптор был выдан одновременно с отменой: возвращаем его в пул.
			p.mu.Unlock()
			p.giveBack(ctx, g)
		default:
			p.waiters.Remove(elem)
			p.mu.Unlock()
		}
		logger.Log(ctx).Debug(ctx, LogAcquireCanceled, zap.Error(ctx.Err()))
		return zero, fmt.Errorf("%w: %w", ErrAcquireTimeout, ctx.Err())
	}
}

func (p *Pool[T]) accept(ctx context.Context, g grant[T]) (T, error) {
	var zero T
	switch {
	case g.closed:
		return zero, ErrClosed
	case g.fresh:
		return p.openReserved(ctx)
	default:
		return g.handle, nil
	}
}

func (p *Pool[T]) giveBack(ctx context.Context, g grant[T]) {
	switch {
	case g.closed:
	case g.fresh:
		p.releaseSlot()
	default:
		p.Release(ctx, g.handle)
	}
}

// openReserved открывает дескриптор под уже зарезервированный слот.
func (p *Pool[T]) openReserved(ctx context.Context) (T, error) {
	h, err := p.open(ctx)
	if err != nil {
		p.releaseSlot()
		logger.Log(ctx).Warn(ctx, LogOpenFailed, zap.Error(err))
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	return h, nil
}

// releaseSlot освобождает слот без дескриптора: первый ожидающий получает право открыть новый.
func (p *Pool[T]) releaseSlot() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		if ch, ok := p.popWaiter(); ok {
			ch <- grant[T]{fresh: true}
			return
		}
	}
	p.outstanding--
}

// popWaiter извлекает первого ожидающего. Вызывается под p.mu.
func (p *Pool[T]) popWaiter() (chan grant[T], bool) {
	front := p.waiters.Front()
	if front == nil {
		return nil, false
	}
	p.waiters.Remove(front)
	ch, ok := front.Value.(chan grant[T])
	return ch, ok
}

// Release возвращает дескриптор. Если есть ожидающие, дескриптор передается первому из них;
// иначе он остается простаивать, пока простаивающих меньше половины максимума,
// а сверх этого закрывается.
func (p *Pool[T]) Release(ctx context.Context, h T) {
	p.mu.Lock()
	if !p.closed {
		if ch, ok := p.popWaiter(); ok {
			ch <- grant[T]{handle: h}
			p.mu.Unlock()
			return
		}
		if len(p.idle) < p.maxConns/2 {
			p.idle = append(p.idle, h)
			p.mu.Unlock()
			return
		}
	}
	p.outstanding--
	p.mu.Unlock()

	p.closeHandle(ctx, h)
}

// Discard закрывает неисправный дескриптор и освобождает его слот.
func (p *Pool[T]) Discard(ctx context.Context, h T) {
	p.closeHandle(ctx, h)
	p.releaseSlot()
}

func (p *Pool[T]) closeHandle(ctx context.Context, h T) {
	if err := h.Close(ctx); err != nil {
		logger.Log(ctx).Warn(ctx, LogCloseFailed, zap.Error(err))
	}
}

// Close закрывает все простаивающие дескрипторы и будит ожидающих с ErrClosed.
// Выданные дескрипторы закрываются при возврате. Повторный вызов ничего не делает.
func (p *Pool[T]) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true

	idle := p.idle
	p.idle = nil
	p.outstanding -= len(idle)

	for {
		ch, ok := p.popWaiter()
		if !ok {
			break
		}
		ch <- grant[T]{closed: true}
	}
	p.mu.Unlock()

	logger.Log(ctx).Debug(ctx, LogClosingIdle, zap.Int("idle", len(idle)))

	var errs []error
	for _, h := range idle {
		if err := h.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stats возвращает текущее состояние пула.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Max:         p.maxConns,
		Outstanding: p.outstanding,
		Idle:        len(p.idle),
		Waiting:     p.waiters.Len(),
	}
}
