package pool_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonotes/pkg/pool"
)

type fakeHandle struct {
	id     int
	closed atomic.Bool
}

func (h *fakeHandle) Close(context.Context) error {
	h.closed.Store(true)
	return nil
}

type opener struct {
	mu     sync.Mutex
	opened []*fakeHandle
	fail   error
}

func (o *opener) open(context.Context) (*fakeHandle, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail != nil {
		return nil, o.fail
	}
	h := &fakeHandle{id: len(o.opened) + 1}
	o.opened = append(o.opened, h)
	return h, nil
}

func (o *opener) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.opened)
}

func newPool(t *testing.T, maxConns int) (*pool.Pool[*fakeHandle], *opener) {
	t.Helper()
	op := &opener{}
	p, err := pool.New[*fakeHandle](op.open, maxConns)
	require.NoError(t, err)
	return p, op
}

func waitForWaiters(t *testing.T, p *pool.Pool[*fakeHandle], n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return p.Stats().Waiting == n
	}, time.Second, 5*time.Millisecond)
}

func TestNewRejectsInvalidSize(t *testing.T) {
	op := &opener{}
	for _, size := range []int{0, -1} {
		p, err := pool.New[*fakeHandle](op.open, size)
		require.ErrorIs(t, err, pool.ErrInvalidSize)
		assert.Nil(t, p)
	}
}

func TestAcquireOpensAndReuses(t *testing.T) {
	ctx := context.Background()
	p, op := newPool(t, 4)

	h1, err := p.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, op.count())

	p.Release(ctx, h1)
	assert.Equal(t, pool.Stats{Max: 4, Outstanding: 1, Idle: 1}, p.Stats())

	h2, err := p.Acquire(ctx)
	require.NoError(t, err)
	assert.Same(t, h1, h2, "idle handle must be reused")
	assert.Equal(t, 1, op.count())
}

func TestReleaseKeepsAtMostHalfIdle(t *testing.T) {
	ctx := context.Background()
	p, _ := newPool(t, 4)

	handles := make([]*fakeHandle, 0, 4)
	for range 4 {
		h, err := p.Acquire(ctx)
		require.NoError(t, err)
		handles = append(handles, h)
	}
	assert.Equal(t, 4, p.Stats().Outstanding)

	for _, h := range handles {
		p.Release(ctx, h)
	}

	stats := p.Stats()
	assert.Equal(t, 2, stats.Idle)
	assert.Equal(t, 2, stats.Outstanding)

	closed := 0
	for _, h := range handles {
		if h.closed.Load() {
			closed++
		}
	}
	assert.Equal(t, 2, closed)
}

func TestReleaseClosesWhenMaxIsOne(t *testing.T) {
	ctx := context.Background()
	p, _ := newPool(t, 1)

	h, err := p.Acquire(ctx)
	require.NoError(t, err)
	p.Release(ctx, h)

	assert.True(t, h.closed.Load())
	assert.Equal(t, pool.Stats{Max: 1}, p.Stats())
}

func TestReleaseHandsOffToWaiter(t *testing.T) {
	ctx := context.Background()
	p, op := newPool(t, 1)

	held, err := p.Acquire(ctx)
	require.NoError(t, err)

	got := make(chan *fakeHandle, 1)
	go func() {
		h, err := p.Acquire(ctx)
		if err == nil {
			got <- h
		}
	}()
	waitForWaiters(t, p, 1)

	p.Release(ctx, held)

	select {
	case h := <-got:
		assert.Same(t, held, h)
		assert.False(t, h.closed.Load(), "handed-off handle must stay open")
	case <-time.After(time.Second):
		t.Fatal("waiter was not served")
	}
	assert.Equal(t, 1, op.count())
	assert.Equal(t, 1, p.Stats().Outstanding)
}

func TestWaitersAreServedInArrivalOrder(t *testing.T) {
	ctx := context.Background()
	p, _ := newPool(t, 1)

	held, err := p.Acquire(ctx)
	require.NoError(t, err)

	order := make(chan string, 3)
	var wg sync.WaitGroup
	for i, name := range []string{"first", "second", "third"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := p.Acquire(ctx)
			if err != nil {
				return
			}
			order <- name
			p.Release(ctx, h)
		}()
		waitForWaiters(t, p, i+1)
	}

	p.Release(ctx, held)
	wg.Wait()
	close(order)

	var got []string
	for name := range order {
		got = append(got, name)
	}
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestAcquireHonoursContext(t *testing.T) {
	p, _ := newPool(t, 1)

	held, err := p.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	h, err := p.Acquire(ctx)
	assert.Nil(t, h)
	require.ErrorIs(t, err, pool.ErrAcquireTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, p.Stats().Waiting)

	p.Release(context.Background(), held)
}

func TestOpenFailureFreesSlot(t *testing.T) {
	ctx := context.Background()
	p, op := newPool(t, 1)
	op.fail = errors.New("connection refused")

	h, err := p.Acquire(ctx)
	assert.Nil(t, h)
	require.ErrorIs(t, err, pool.ErrOpen)
	assert.Equal(t, 0, p.Stats().Outstanding)

	op.fail = nil
	h, err = p.Acquire(ctx)
	require.NoError(t, err)
	assert.NotNil(t, h)
}

func TestDiscardLetsWaiterOpenNewHandle(t *testing.T) {
	ctx := context.Background()
	p, op := newPool(t, 1)

	broken, err := p.Acquire(ctx)
	require.NoError(t, err)

	got := make(chan *fakeHandle, 1)
	go func() {
		h, err := p.Acquire(ctx)
		if err == nil {
			got <- h
		}
	}()
	waitForWaiters(t, p, 1)

	p.Discard(ctx, broken)
	assert.True(t, broken.closed.Load())

	select {
	case h := <-got:
		assert.NotSame(t, broken, h)
	case <-time.After(time.Second):
		t.Fatal("waiter was not served")
	}
	assert.Equal(t, 2, op.count())
	assert.Equal(t, 1, p.Stats().Outstanding)
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	p, _ := newPool(t, 4)

	idle, err := p.Acquire(ctx)
	require.NoError(t, err)
	inUse, err := p.Acquire(ctx)
	require.NoError(t, err)
	p.Release(ctx, idle)

	require.NoError(t, p.Close(ctx))
	assert.True(t, idle.closed.Load())
	assert.False(t, inUse.closed.Load())

	_, err = p.Acquire(ctx)
	require.ErrorIs(t, err, pool.ErrClosed)

	p.Release(ctx, inUse)
	assert.True(t, inUse.closed.Load())
	assert.Equal(t, 0, p.Stats().Outstanding)

	require.NoError(t, p.Close(ctx), "second close is a no-op")
}

func TestCloseWakesWaiters(t *testing.T) {
	ctx := context.Background()
	p, _ := newPool(t, 1)

	_, err := p.Acquire(ctx)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := p.Acquire(ctx)
		errCh <- err
	}()
	waitForWaiters(t, p, 1)

	require.NoError(t, p.Close(ctx))

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, pool.ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken")
	}
}

func TestConcurrentUseNeverExceedsMax(t *testing.T) {
	const maxConns = 3
	ctx := context.Background()
	p, op := newPool(t, maxConns)

	var inUse, peak atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := p.Acquire(ctx)
			if !assert.NoError(t, err) {
				return
			}
			n := inUse.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inUse.Add(-1)
			p.Release(ctx, h)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(maxConns))
	assert.LessOrEqual(t, p.Stats().Outstanding, maxConns)
	assert.Equal(t, 0, p.Stats().Waiting)

	open := 0
	for _, h := range op.opened {
		if !h.closed.Load() {
			open++
		}
	}
	assert.Equal(t, p.Stats().Outstanding, open)
}
