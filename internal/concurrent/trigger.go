package concurrent

import (
	"context"
	"fmt"
)

// Async executes the given function on a separate go routine and waits for it to finish.
// Cancelling the context releases the caller, but does not interrupt the execution itself.
func Async(ctx context.Context, exec func() error) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("async execution panicked: %v", r)
			}
		}()
		done <- exec()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
