// Package fanout provides a scatter-gather primitive for per-candidate LLM
// calls. Each task's outcome lands in its own positional slot, so one task's
// failure or panic cannot abort or reorder its siblings, and the caller keeps
// full control over fallback policy.
package fanout

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Result pairs one task's value with the error that produced it, if any.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok reports whether the task produced a usable value.
func (r Result[T]) Ok() bool { return r.Err == nil }

// Task computes one value. Tasks run concurrently and must be independent.
type Task[T any] func(ctx context.Context) (T, error)

// Gather runs all tasks with at most limit in flight (limit <= 0 runs them
// all at once) and returns one Result per task, paired by position rather
// than completion order. A panicking task is captured into its slot's Err.
// Gather itself never fails.
func Gather[T any](ctx context.Context, limit int, tasks []Task[T]) []Result[T] {
	results := make([]Result[T], len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, task := range tasks {
		g.Go(func() error {
			defer func() {
				if rec := recover(); rec != nil {
					results[i].Err = fmt.Errorf("task %d panicked: %v", i, rec)
				}
			}()
			v, err := task(gctx)
			results[i] = Result[T]{Value: v, Err: err}
			return nil
		})
	}
	// Goroutines always return nil; Wait only fences completion.
	_ = g.Wait()
	return results
}
