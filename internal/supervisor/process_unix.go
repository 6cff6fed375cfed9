//go:build unix

package supervisor

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

func terminate(pid int) error {
	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return fmt.Errorf("%w: pid %d", ErrNoSuchProcess, pid)
		}
		return fmt.Errorf("failed to terminate pid %d: %w", pid, err)
	}
	return nil
}
