//go:build windows

package supervisor

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

// terminate calls TerminateProcess through os.Process.Kill.
func terminate(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return openError(pid, err)
	}
	defer p.Release() //nolint:errcheck // handle cleanup only

	if err := p.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("%w: pid %d", ErrNoSuchProcess, pid)
		}
		return fmt.Errorf("failed to terminate pid %d: %w", pid, err)
	}
	return nil
}

// openError maps an OpenProcess failure. Windows reports a pid with no
// process as ERROR_INVALID_PARAMETER; anything else, access denied
// included, is a real failure.
func openError(pid int, err error) error {
	if errors.Is(err, windows.ERROR_INVALID_PARAMETER) {
		return fmt.Errorf("%w: pid %d", ErrNoSuchProcess, pid)
	}
	return fmt.Errorf("failed to open pid %d: %w", pid, err)
}
