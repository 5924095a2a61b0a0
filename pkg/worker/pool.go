// Package worker provides a small bounded worker pool for fan-out work
// like applying a reaction to many messages. Tasks run with shared
// concurrency; failures are collected rather than aborting the batch.
package worker

import (
	"context"
	"sync"
	"sync/atomic"
)

// Result records the outcome of one task.
type Result[T any] struct {
	Task T
	Err  error
}

// Pool runs tasks of type T through a fixed number of workers.
type Pool[T any] struct {
	workers int
	process func(context.Context, T) error

	processed atomic.Int64
	failed    atomic.Int64
}

// NewPool creates a pool. workers <= 0 defaults to 4.
func NewPool[T any](workers int, process func(context.Context, T) error) *Pool[T] {
	if workers <= 0 {
		workers = 4
	}
	return &Pool[T]{workers: workers, process: process}
}

// Run processes every task and returns one Result per task, in
// completion order. It blocks until all tasks finish or ctx is
// cancelled; cancelled tasks report ctx.Err().
func (p *Pool[T]) Run(ctx context.Context, tasks []T) []Result[T] {
	work := make(chan T)
	results := make(chan Result[T], len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range work {
				if err := ctx.Err(); err != nil {
					p.failed.Add(1)
					results <- Result[T]{Task: task, Err: err}
					continue
				}
				err := p.process(ctx, task)
				if err != nil {
					p.failed.Add(1)
				} else {
					p.processed.Add(1)
				}
				results <- Result[T]{Task: task, Err: err}
			}
		}()
	}

	for _, task := range tasks {
		work <- task
	}
	close(work)
	wg.Wait()
	close(results)

	out := make([]Result[T], 0, len(tasks))
	for r := range results {
		out = append(out, r)
	}
	return out
}

// Processed returns how many tasks completed without error
func (p *Pool[T]) Processed() int64 {
	return p.processed.Load()
}

// Failed returns how many tasks errored or were cancelled
func (p *Pool[T]) Failed() int64 {
	return p.failed.Load()
}
