package maturity

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type WorkerPoolI interface {
	Submit(ctx context.Context, job Job) error
	Close()
}

type Job func() error

// WorkerPool bounds how many redemptions settle concurrently. Submit
// blocks once all workers are busy and the queue is full, which throttles
// the sweep loop instead of piling up goroutines.
type WorkerPool struct {
	jobs      chan Job
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewWorkerPool(workers, queueSize int) *WorkerPool {
	wp := &WorkerPool{jobs: make(chan Job, queueSize)}

	wp.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for job := range wp.jobs {
		if err := job(); err != nil {
			zap.L().Error("redemption job failed", zap.Error(err))
		}
	}
}

func (wp *WorkerPool) Submit(ctx context.Context, job Job) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case wp.jobs <- job:
		return nil
	}
}

// Close stops accepting jobs and waits for in-flight ones to finish.
func (wp *WorkerPool) Close() {
	wp.closeOnce.Do(func() {
		close(wp.jobs)
	})
	wp.wg.Wait()
}
