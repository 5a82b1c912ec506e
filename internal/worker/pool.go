// Package worker runs query jobs on a fixed number of goroutines.
package worker

import (
	"context"
	"sync"

	"audiofetch/pkg/logger"
)

// ProcessFunc handles a single job. It must return promptly once ctx is done.
type ProcessFunc[J, R any] func(ctx context.Context, job J) R

// Pool manages a fixed set of workers fed from a job queue
type Pool[J, R any] struct {
	numWorkers  int
	jobQueue    chan J
	resultQueue chan R
	wg          sync.WaitGroup
	process     ProcessFunc[J, R]
	logger      logger.Logger
	closeOnce   sync.Once
}

// NewPool creates a pool of numWorkers workers. Fewer than one worker is
// treated as one, which processes jobs strictly in submission order.
func NewPool[J, R any](numWorkers int, process ProcessFunc[J, R], log logger.Logger) *Pool[J, R] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &Pool[J, R]{
		numWorkers:  numWorkers,
		jobQueue:    make(chan J, numWorkers*2),
		resultQueue: make(chan R, numWorkers),
		process:     process,
		logger:      log,
	}
}

// Start launches the workers. Every submitted job is processed exactly once
// even after ctx is cancelled; process decides how to short-circuit.
func (p *Pool[J, R]) Start(ctx context.Context) {
	p.logger.DebugWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": p.numWorkers,
	})

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Submit queues a job, blocking while the queue is full
func (p *Pool[J, R]) Submit(job J) {
	p.jobQueue <- job
}

// Close stops accepting jobs, waits for the workers and closes Results
func (p *Pool[J, R]) Close() {
	p.closeOnce.Do(func() {
		close(p.jobQueue)
		p.wg.Wait()
		close(p.resultQueue)
		p.logger.Debug("Worker pool stopped")
	})
}

// Results returns the result channel. It is closed by Close.
func (p *Pool[J, R]) Results() <-chan R {
	return p.resultQueue
}

// Workers returns the number of workers
func (p *Pool[J, R]) Workers() int {
	return p.numWorkers
}

func (p *Pool[J, R]) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for job := range p.jobQueue {
		p.resultQueue <- p.process(ctx, job)
	}

	p.logger.DebugWithFields("Worker stopping - job queue closed", map[string]interface{}{
		"worker_id": id,
	})
}

// Run submits every job to a fresh pool and returns the results indexed like
// jobs
func Run[J, R any](ctx context.Context, numWorkers int, jobs []J, process ProcessFunc[J, R], log logger.Logger) []R {
	type indexed struct {
		i int
		r R
	}

	pool := NewPool(numWorkers, func(ctx context.Context, i int) indexed {
		return indexed{i: i, r: process(ctx, jobs[i])}
	}, log)
	pool.Start(ctx)

	go func() {
		for i := range jobs {
			pool.Submit(i)
		}
		pool.Close()
	}()

	results := make([]R, len(jobs))
	for res := range pool.Results() {
		results[res.i] = res.r
	}
	return results
}
