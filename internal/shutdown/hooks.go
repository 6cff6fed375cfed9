// Package shutdown provides an explicit registry of cleanup functions that
// the CLI runs on normal exit and on interrupt signals.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Func is a cleanup function run at shutdown.
type Func func(ctx context.Context) error

type hook struct {
	name string
	fn   Func
}

// Hooks collects cleanup functions and runs them exactly once.
// The zero value is ready to use.
type Hooks struct {
	mu    sync.Mutex
	hooks []hook
	ran   bool
}

// Register adds a cleanup function. Hooks registered after Run has
// started are ignored.
func (h *Hooks) Register(name string, fn Func) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ran {
		return
	}
	h.hooks = append(h.hooks, hook{name: name, fn: fn})
}

// Len returns the number of registered hooks.
func (h *Hooks) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.hooks)
}

// Run invokes all registered hooks in reverse registration order.
// Every hook runs even if an earlier one fails; the failures are joined.
// Subsequent calls are no-ops returning nil.
func (h *Hooks) Run(ctx context.Context) error {
	h.mu.Lock()
	if h.ran {
		h.mu.Unlock()
		return nil
	}
	h.ran = true
	hooks := h.hooks
	h.hooks = nil
	h.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i].fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", hooks[i].name, err))
		}
	}
	return errors.Join(errs...)
}
