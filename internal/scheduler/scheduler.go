// Package scheduler provides the worker-pool collaborator
// transport.Dispatch starts before it begins polling and stops on
// every exit path (spec §4.5 steps 1 and 4): it owns background jobs
// that produce outbound packets via remote.Transport.Transmit without
// blocking the read side.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"rtcore/internal/retry"
	"rtcore/util"
)

// Scheduler is the out-of-scope initialize/destroy collaborator the
// spec names: something the dispatch loop brings up before its loop
// and tears down, joining any outstanding work, after it exits.
type Scheduler interface {
	// Start brings the scheduler up. Called once, before the dispatch
	// loop begins polling.
	Start(ctx context.Context) error
	// Submit queues job to run on a worker goroutine. Returns an error
	// if the scheduler has already been stopped.
	Submit(job func(ctx context.Context) error) error
	// Stop joins every outstanding job and tears the scheduler down.
	// Safe to call more than once.
	Stop() error
}

// WorkerPool is the reference Scheduler: a bounded pool of goroutines
// draining a job queue, each job wrapped in a circuit breaker so a
// run of failures in one job class doesn't retry-storm the transport.
type WorkerPool struct {
	logger  *util.Logger
	breaker *retry.CircuitBreaker
	workers int

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	jobs    chan func(ctx context.Context) error
	wg      sync.WaitGroup
	stopped bool
}

// NewWorkerPool creates a pool with workers goroutines (at most 8)
// draining a job queue of the given depth. logger may be nil.
func NewWorkerPool(workers, queueDepth int, logger *util.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queueDepth <= 0 {
		queueDepth = 16
	}
	if logger == nil {
		logger = util.NewLogger(0)
	}
	return &WorkerPool{
		logger:  logger,
		breaker: retry.NewCircuitBreaker(retry.DefaultCircuitBreakerConfig()),
		jobs:    make(chan func(ctx context.Context) error, queueDepth),
		workers: workers,
	}
}

// Start spawns the worker goroutines fixed at construction (at most
// 8), all draining the shared job channel.
func (p *WorkerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx != nil {
		return fmt.Errorf("scheduler: already started")
	}
	p.ctx, p.cancel = context.WithCancel(ctx)

	workers := p.workers
	if workers > 8 {
		workers = 8 // bound concurrent outbound transmits
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return nil
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			// Run whatever is still queued before exiting, so Stop
			// joins outstanding jobs rather than dropping them.
			for {
				select {
				case job := <-p.jobs:
					if err := p.breaker.Execute(func() error { return job(p.ctx) }); err != nil {
						p.logger.Warn("scheduler: job failed: %v", err)
					}
				default:
					return
				}
			}
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			err := p.breaker.Execute(func() error { return job(p.ctx) })
			if err != nil {
				p.logger.Warn("scheduler: job failed: %v", err)
			}
		}
	}
}

// Submit queues job. It blocks if the queue is full, which back-
// pressures callers rather than dropping work silently.
func (p *WorkerPool) Submit(job func(ctx context.Context) error) error {
	p.mu.Lock()
	stopped := p.stopped
	ctx := p.ctx
	p.mu.Unlock()

	if stopped {
		return fmt.Errorf("scheduler: stopped")
	}
	if ctx == nil {
		return fmt.Errorf("scheduler: not started")
	}

	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels the pool's context, lets the workers run any jobs still
// queued (they see the cancelled context), and joins every worker
// goroutine.
func (p *WorkerPool) Stop() error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
	return nil
}
