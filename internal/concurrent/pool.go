package concurrent

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers returns the default concurrency limit for a batch.
func Workers() int {
	return runtime.GOMAXPROCS(0)
}

// Each executes fn for every index from 0 to n, with at most limit executions running at once,
// and waits for all of them to finish.
// Results are expected to be written by index, so the caller receives them in issue order.
// The first error fails the batch. Running executions are never interrupted,
// but executions that have not started yet are skipped once the batch has failed or the context is cancelled.
func Each(ctx context.Context, n, limit int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return nil
	}
	if limit <= 0 {
		limit = 1
	}

	group, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, limit)

	for i := 0; i < n; i++ {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			// dont issue any more work, but wait for the running ones
			if err := group.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		}
		i := i
		group.Go(func() (err error) {
			defer func() {
				<-sem
				if r := recover(); r != nil {
					err = fmt.Errorf("task %d panicked: %v", i, r)
				}
			}()
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, i)
		})
	}

	return group.Wait()
}
