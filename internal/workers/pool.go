// Package workers provides the goroutine pool that runs simulation
// paths in parallel with bounded queueing.
package workers

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Task represents a unit of work to be processed
type Task interface {
	Execute() error
}

// TaskFunc is a function that can be used as a Task
type TaskFunc func() error

func (f TaskFunc) Execute() error { return f() }

// ErrPoolStopped is returned when submitting to a stopped pool.
var ErrPoolStopped = errors.New("worker pool is stopped")

// Pool manages a fixed set of worker goroutines draining a shared task
// queue. Submission blocks when the queue is full, which gives natural
// backpressure when a simulation schedules more paths than workers.
type Pool struct {
	logger     *zap.Logger
	numWorkers int
	queue      chan Task
	wg         sync.WaitGroup

	running   atomic.Bool
	completed atomic.Int64
	failed    atomic.Int64
}

// Stats contains pool counters.
type Stats struct {
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// NewPool creates a pool. numWorkers defaults to the CPU count and
// queueSize to four tasks per worker.
func NewPool(logger *zap.Logger, numWorkers, queueSize int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = numWorkers * 4
	}

	return &Pool{
		logger:     logger,
		numWorkers: numWorkers,
		queue:      make(chan Task, queueSize),
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	if p.running.Swap(true) {
		return
	}

	p.logger.Debug("starting worker pool", zap.Int("workers", p.numWorkers))

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *Pool) run() {
	defer p.wg.Done()

	for task := range p.queue {
		if err := task.Execute(); err != nil {
			p.failed.Add(1)
			p.logger.Debug("task failed", zap.Error(err))
			continue
		}
		p.completed.Add(1)
	}
}

// Submit queues a task, blocking until there is room or ctx is done.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	if !p.running.Load() {
		return ErrPoolStopped
	}

	select {
	case p.queue <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmitFunc queues a function as a task.
func (p *Pool) SubmitFunc(ctx context.Context, fn func() error) error {
	return p.Submit(ctx, TaskFunc(fn))
}

// Stop drains the queue and waits for workers to exit.
func (p *Pool) Stop() {
	if !p.running.Swap(false) {
		return
	}
	close(p.queue)
	p.wg.Wait()
	p.logger.Debug("worker pool stopped",
		zap.Int64("completed", p.completed.Load()),
		zap.Int64("failed", p.failed.Load()),
	)
}

// IsRunning returns whether the pool accepts tasks.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}

// GetStats returns current counters.
func (p *Pool) GetStats() Stats {
	return Stats{
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
	}
}
