package taskpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// idleGen simulates a generation source that never supersedes: every
// call derives a fresh, independently cancellable child of ctx, the way
// db.WithCancel behaves between writes.
type idleGen struct{}

func (idleGen) WithCancel(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithCancel(ctx)
}

// bumpingGen simulates a generation source where each new call
// supersedes (cancels) the context handed out by the previous call, the
// way db.WithCancel behaves across a write that bumps the revision.
type bumpingGen struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

func (g *bumpingGen) WithCancel(ctx context.Context) (context.Context, context.CancelFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
	}
	child, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	return child, cancel
}

func TestPoolLimitsConcurrency(t *testing.T) {
	p := New(2, idleGen{})

	var running int32
	var maxRunning int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Run(context.Background(), func(ctx context.Context) error {
				n := atomic.AddInt32(&running, 1)
				for {
					cur := atomic.LoadInt32(&maxRunning)
					if n <= cur || atomic.CompareAndSwapInt32(&maxRunning, cur, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&maxRunning), int32(2))
}

func TestPoolRunPropagatesFnError(t *testing.T) {
	p := New(1, idleGen{})
	sentinel := context.Canceled
	err := p.Run(context.Background(), func(ctx context.Context) error {
		return sentinel
	})
	assert.Equal(t, sentinel, err)
}

func TestPoolRunUnwindsWhenGenerationIsSuperseded(t *testing.T) {
	gen := &bumpingGen{}
	p := New(1, gen)

	started := make(chan struct{})
	result := make(chan error, 1)
	go func() {
		result <- p.Run(context.Background(), func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		})
	}()

	<-started
	// A second Run supersedes the first's generation context, the way a
	// concurrent edit bumps the db's revision mid-computation.
	go p.Run(context.Background(), func(ctx context.Context) error { return nil })

	select {
	case err := <-result:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("first Run did not unwind after being superseded")
	}
}
