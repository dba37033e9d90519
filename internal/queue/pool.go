package queue

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

type WorkerPoolI interface {
	AddTask(ctx context.Context, task Task) error
	Close()
}

type Task func() error

var ErrPoolClosed = errors.New("worker pool is closed")

type WorkerPool struct {
	pool   chan Task
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewWorkerPool(size int) *WorkerPool {
	if size < 1 {
		size = 1
	}
	wp := &WorkerPool{pool: make(chan Task, size)}

	for i := 0; i < size; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for task := range wp.pool {
		if err := task(); err != nil {
			zap.L().Error("Task execution failed", zap.Error(err))
		}
	}
}

func (wp *WorkerPool) AddTask(ctx context.Context, task Task) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return ErrPoolClosed
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case wp.pool <- task:
		return nil
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
func (wp *WorkerPool) Close() {
	wp.mu.Lock()
	if !wp.closed {
		wp.closed = true
		close(wp.pool)
	}
	wp.mu.Unlock()
	wp.wg.Wait()
}

// PoolDispatcher runs jobs on a local worker pool.
type PoolDispatcher struct {
	pool    WorkerPoolI
	handler Handler
}

func NewPoolDispatcher(pool WorkerPoolI, handler Handler) *PoolDispatcher {
	return &PoolDispatcher{pool: pool, handler: handler}
}

// Dispatch queues the job. The job outlives the caller's request, so it runs
// on a context that is not cancelled with it.
func (d *PoolDispatcher) Dispatch(ctx context.Context, job Job) error {
	jobCtx := context.WithoutCancel(ctx)
	return d.pool.AddTask(ctx, func() error {
		return d.handler(jobCtx, job)
	})
}
