package supervisor

import (
	"errors"
	"fmt"

	"github.com/nao1215/torfox/internal/bounded"
)

var (
	// ErrTorStartTimeout is returned when no ready window appears in time.
	// It wraps bounded.ErrTimeout.
	ErrTorStartTimeout = fmt.Errorf("tor did not become ready: %w", bounded.ErrTimeout)

	// ErrNoSuchProcess is returned by a ProcessTable when the target has
	// already exited. KillRelated ignores it.
	ErrNoSuchProcess = errors.New("no such process")

	// ErrUnsupportedPlatform is returned by the window system on platforms
	// without native window enumeration.
	ErrUnsupportedPlatform = errors.New("window inspection is only supported on Windows")
)
