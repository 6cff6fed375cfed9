package supervisor

import "regexp"

// readyWindowPattern matches the title Tor Browser shows once Tor is connected.
var readyWindowPattern = regexp.MustCompile(`^About\sTor.*Tor\sBrowser$`)

// IsReadyTitle reports whether a window title signals that Tor is ready.
func IsReadyTitle(title string) bool {
	return readyWindowPattern.MatchString(title)
}

// Window is a top-level window of the desktop session.
type Window struct {
	Handle uintptr
	Title  string
}

// WindowSystem enumerates and minimizes top-level windows.
type WindowSystem interface {
	Windows() ([]Window, error)
	Minimize(w Window) error
}

// NativeWindows returns the WindowSystem of the running OS.
func NativeWindows() WindowSystem {
	return nativeWindows{}
}
