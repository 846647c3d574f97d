package concurrent

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Each runs action for every element on at most workers goroutines
// (unlimited when workers <= 0). The first error cancels ctx for the
// remaining actions and is returned.
func Each[T any](ctx context.Context, in []T, workers int, action func(context.Context, int, T) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, v := range in {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return action(ctx, i, v)
		})
	}
	return g.Wait()
}

// EachJoin is like Each but never cancels: every action runs and all
// errors come back joined, in element order.
func EachJoin[T any](ctx context.Context, in []T, workers int, action func(context.Context, int, T) error) error {
	errs := make([]error, len(in))
	g := errgroup.Group{}
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, v := range in {
		g.Go(func() error {
			errs[i] = action(ctx, i, v)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// ParallelMap applies mapFn to each element in parallel, preserving order.
// The workers parameter controls the number of goroutines.
func ParallelMap[T any, R any](in []T, workers int, mapFn func(T) R) []R {
	out := make([]R, len(in))
	if workers <= 0 {
		workers = len(in)
	}
	var wg sync.WaitGroup
	sem := make(chan struct{}, max(workers, 1))

	for idx, val := range in {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, v T) {
			defer wg.Done()
			out[i] = mapFn(v)
			<-sem
		}(idx, val)
	}
	wg.Wait()
	return out
}
