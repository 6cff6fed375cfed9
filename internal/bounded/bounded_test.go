package bounded

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when op finishes in time", func(t *testing.T) {
		t.Parallel()

		err := Run(context.Background(), time.Second, func(context.Context) error {
			return nil
		})
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("propagates op error", func(t *testing.T) {
		t.Parallel()

		want := errors.New("boom")
		err := Run(context.Background(), time.Second, func(context.Context) error {
			return want
		})
		if !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, err)
		}
	})

	t.Run("returns ErrTimeout when op overruns", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		defer close(release)

		start := time.Now()
		err := Run(context.Background(), 50*time.Millisecond, func(context.Context) error {
			<-release // ignores its context on purpose
			return nil
		})
		if !errors.Is(err, ErrTimeout) {
			t.Fatalf("expected ErrTimeout, got %v", err)
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("expected to return near the budget, took %v", elapsed)
		}
	})

	t.Run("op context carries the deadline", func(t *testing.T) {
		t.Parallel()

		err := Run(context.Background(), time.Second, func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				return errors.New("no deadline")
			}
			return nil
		})
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("parent cancellation returns context error", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := Run(ctx, time.Second, func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if errors.Is(err, ErrTimeout) {
			t.Error("cancellation must not be reported as ErrTimeout")
		}
	})

	t.Run("non-positive budget runs unbounded", func(t *testing.T) {
		t.Parallel()

		called := false
		err := Run(context.Background(), 0, func(ctx context.Context) error {
			called = true
			if _, ok := ctx.Deadline(); ok {
				return errors.New("unexpected deadline")
			}
			return nil
		})
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if !called {
			t.Error("expected op to be called")
		}
	})
}

func TestValue(t *testing.T) {
	t.Parallel()

	t.Run("returns op value", func(t *testing.T) {
		t.Parallel()

		v, err := Value(context.Background(), time.Second, func(context.Context) (int, error) {
			return 42, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 42 {
			t.Errorf("expected 42, got %d", v)
		}
	})

	t.Run("returns zero value on timeout", func(t *testing.T) {
		t.Parallel()

		v, err := Value(context.Background(), 20*time.Millisecond, func(ctx context.Context) (string, error) {
			<-ctx.Done()
			time.Sleep(50 * time.Millisecond)
			return "late", nil
		})
		if !errors.Is(err, ErrTimeout) {
			t.Fatalf("expected ErrTimeout, got %v", err)
		}
		if v != "" {
			t.Errorf("expected zero value, got %q", v)
		}
	})
}
