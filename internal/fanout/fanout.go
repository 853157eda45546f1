// Package fanout runs independent per-item tasks with bounded concurrency.
package fanout

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// TaskError identifies which input item failed.
type TaskError struct {
	Index int
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d: %v", e.Index, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// Run calls fn for every item with at most limit calls in flight and returns
// the results in input order.
//
// The first failure cancels the context passed to the other tasks; items that
// have not started yet are skipped. Run returns that first failure wrapped in
// a *TaskError. A limit below 1 is treated as 1.
func Run[T any, R any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, index int, item T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return nil, ctx.Err()
	}
	if limit < 1 {
		limit = 1
	}

	results := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := fn(gctx, i, item)
			if err != nil {
				return &TaskError{Index: i, Err: err}
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
