package shutdown

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestHooksRun(t *testing.T) {
	t.Parallel()

	t.Run("runs hooks in reverse order", func(t *testing.T) {
		t.Parallel()

		var h Hooks
		var order []string
		for _, name := range []string{"first", "second", "third"} {
			h.Register(name, func(context.Context) error {
				order = append(order, name)
				return nil
			})
		}

		if err := h.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"third", "second", "first"}
		if len(order) != len(want) {
			t.Fatalf("expected %v, got %v", want, order)
		}
		for i := range want {
			if order[i] != want[i] {
				t.Errorf("order[%d] = %q, expected %q", i, order[i], want[i])
			}
		}
	})

	t.Run("runs only once", func(t *testing.T) {
		t.Parallel()

		var h Hooks
		calls := 0
		h.Register("count", func(context.Context) error {
			calls++
			return nil
		})

		_ = h.Run(context.Background())
		if err := h.Run(context.Background()); err != nil {
			t.Errorf("expected nil on second run, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("joins errors and keeps going", func(t *testing.T) {
		t.Parallel()

		var h Hooks
		errA := errors.New("a failed")
		errB := errors.New("b failed")
		reached := false
		h.Register("ok", func(context.Context) error {
			reached = true
			return nil
		})
		h.Register("a", func(context.Context) error { return errA })
		h.Register("b", func(context.Context) error { return errB })

		err := h.Run(context.Background())
		if !errors.Is(err, errA) || !errors.Is(err, errB) {
			t.Errorf("expected joined errors, got %v", err)
		}
		if !reached {
			t.Error("expected all hooks to run")
		}
	})

	t.Run("register after run is ignored", func(t *testing.T) {
		t.Parallel()

		var h Hooks
		_ = h.Run(context.Background())
		h.Register("late", func(context.Context) error { return errors.New("should not run") })
		if h.Len() != 0 {
			t.Errorf("expected no hooks, got %d", h.Len())
		}
	})

	t.Run("concurrent runs invoke hook once", func(t *testing.T) {
		t.Parallel()

		var h Hooks
		var mu sync.Mutex
		calls := 0
		h.Register("count", func(context.Context) error {
			mu.Lock()
			calls++
			mu.Unlock()
			return nil
		})

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = h.Run(context.Background())
			}()
		}
		wg.Wait()

		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})
}
