package bounded

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned when an operation does not finish within its budget.
var ErrTimeout = errors.New("operation timed out")

// Run executes op and waits at most d for it to return.
// A non-positive d disables the bound and op runs on the caller's goroutine.
func Run(ctx context.Context, d time.Duration, op func(context.Context) error) error {
	_, err := Value(ctx, d, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Value executes op and waits at most d for its result.
//
// If the budget elapses first, Value returns the zero T and an error that
// wraps ErrTimeout. If the parent context is cancelled first, it returns
// ctx.Err().
func Value[T any](ctx context.Context, d time.Duration, op func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return op(ctx)
	}

	opCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	resultCh := make(chan result, 1)

	go func() {
		v, err := op(opCtx)
		resultCh <- result{v, err}
	}()

	var zero T
	select {
	case r := <-resultCh:
		return r.value, r.err
	case <-opCtx.Done():
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, fmt.Errorf("%w after %s", ErrTimeout, d)
	}
}
