package workers_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/optionfolio/risk-backend/internal/workers"
)

func TestPoolExecutesTasks(t *testing.T) {
	pool := workers.NewPool(zap.NewNop(), 4, 8)
	pool.Start()

	var counter atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		err := pool.SubmitFunc(context.Background(), func() error {
			defer wg.Done()
			counter.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	wg.Wait()
	pool.Stop()

	if counter.Load() != 100 {
		t.Errorf("executed %d tasks, want 100", counter.Load())
	}
	if stats := pool.GetStats(); stats.Completed != 100 {
		t.Errorf("completed stat = %d, want 100", stats.Completed)
	}
}

func TestPoolCountsFailures(t *testing.T) {
	pool := workers.NewPool(zap.NewNop(), 2, 4)
	pool.Start()

	var wg sync.WaitGroup
	wg.Add(1)
	if err := pool.SubmitFunc(context.Background(), func() error {
		defer wg.Done()
		return errors.New("boom")
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	wg.Wait()
	pool.Stop()

	if stats := pool.GetStats(); stats.Failed != 1 {
		t.Errorf("failed stat = %d, want 1", stats.Failed)
	}
}

func TestPoolSubmitAfterStop(t *testing.T) {
	pool := workers.NewPool(zap.NewNop(), 1, 1)
	pool.Start()
	pool.Stop()

	err := pool.SubmitFunc(context.Background(), func() error { return nil })
	if !errors.Is(err, workers.ErrPoolStopped) {
		t.Fatalf("expected ErrPoolStopped, got %v", err)
	}
}

func TestPoolSubmitHonorsContext(t *testing.T) {
	// One worker blocked, queue of one filled: the next submit must
	// wait and then fail when the context is cancelled.
	pool := workers.NewPool(zap.NewNop(), 1, 1)
	pool.Start()
	defer pool.Stop()

	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	pool.SubmitFunc(context.Background(), func() error {
		defer wg.Done()
		<-release
		return nil
	})
	pool.SubmitFunc(context.Background(), func() error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pool.SubmitFunc(ctx, func() error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	close(release)
	wg.Wait()
}
