//go:build windows

package supervisor

import (
	"fmt"
	"sync"

	"golang.org/x/sys/windows"
)

const maxTitleLength = 512

var (
	// enumMu guards enumResult; EnumWindows calls back on the calling thread.
	enumMu     sync.Mutex
	enumResult []Window

	enumCallback = windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		buf := make([]uint16, maxTitleLength)
		n, err := windows.GetWindowText(hwnd, &buf[0], int32(len(buf)))
		if err == nil && n > 0 {
			enumResult = append(enumResult, Window{
				Handle: uintptr(hwnd),
				Title:  windows.UTF16ToString(buf[:n]),
			})
		}
		return 1 // continue enumeration
	})
)

type nativeWindows struct{}

func (nativeWindows) Windows() ([]Window, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumResult = nil
	if err := windows.EnumWindows(enumCallback, nil); err != nil {
		return nil, fmt.Errorf("failed to enumerate windows: %w", err)
	}
	result := enumResult
	enumResult = nil
	return result, nil
}

func (nativeWindows) Minimize(w Window) error {
	windows.ShowWindow(windows.HWND(w.Handle), windows.SW_MINIMIZE)
	return nil
}
