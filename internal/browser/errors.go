package browser

import (
	"errors"
	"fmt"

	"github.com/nao1215/torfox/internal/bounded"
)

var (
	// ErrWaitTimeout is returned when an element does not become present or
	// clickable in time. It wraps bounded.ErrTimeout.
	ErrWaitTimeout = fmt.Errorf("element wait timed out: %w", bounded.ErrTimeout)

	// ErrElementNotFound is returned by FindElement when nothing matches.
	ErrElementNotFound = errors.New("element not found")

	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("browser session is closed")
)
