// File: internal/infra/worker/pool_test.go
package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newRunningPool(t *testing.T, workers int) *Pool {
	t.Helper()
	logger := zerolog.Nop()
	p := NewPool(workers, &logger)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	t.Cleanup(func() {
		cancel()
		p.Stop()
	})
	return p
}

func TestPool_ExecutesSubmittedTasks(t *testing.T) {
	p := newRunningPool(t, 3)

	var done atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		err := p.Submit(context.Background(), func(ctx context.Context) error {
			defer wg.Done()
			done.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("Submit() failed: %v", err)
		}
	}
	wg.Wait()
	if done.Load() != 20 {
		t.Fatalf("executed %d tasks, want 20", done.Load())
	}
}

func TestPool_SubmitBlocksWhenSaturated(t *testing.T) {
	p := newRunningPool(t, 1)

	release := make(chan struct{})
	// Occupy the single worker.
	_ = p.Submit(context.Background(), func(ctx context.Context) error {
		<-release
		return nil
	})

	// The next submission has no free worker and must block until the
	// context is cancelled, not get dropped.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.Submit(ctx, func(ctx context.Context) error { return nil }); err == nil {
		t.Fatal("expected Submit to fail once the context expired")
	}
	close(release)
}

func TestPool_SubmitAfterStop(t *testing.T) {
	logger := zerolog.Nop()
	p := NewPool(2, &logger)
	p.Start(context.Background())
	p.Stop()

	if err := p.Submit(context.Background(), func(ctx context.Context) error { return nil }); err == nil {
		t.Fatal("expected Submit to fail on a stopped pool")
	}
}

func TestPool_RejectsNilTask(t *testing.T) {
	p := newRunningPool(t, 1)
	if err := p.Submit(context.Background(), nil); err == nil {
		t.Fatal("expected an error for a nil task")
	}
}

func TestPool_DefaultSize(t *testing.T) {
	logger := zerolog.Nop()
	if got := NewPool(0, &logger).Size(); got != 5 {
		t.Fatalf("Size() = %d, want default 5", got)
	}
	if got := NewPool(8, &logger).Size(); got != 8 {
		t.Fatalf("Size() = %d, want 8", got)
	}
}

func TestPool_ConcurrencyBoundedByWorkers(t *testing.T) {
	p := newRunningPool(t, 2)

	var inFlight, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		_ = p.Submit(context.Background(), func(ctx context.Context) error {
			defer wg.Done()
			n := inFlight.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return nil
		})
	}
	wg.Wait()
	if got := peak.Load(); got > 2 {
		t.Fatalf("observed %d tasks in flight, pool size is 2", got)
	}
}
