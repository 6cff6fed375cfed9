//go:build !windows

package supervisor

type nativeWindows struct{}

func (nativeWindows) Windows() ([]Window, error) {
	return nil, ErrUnsupportedPlatform
}

func (nativeWindows) Minimize(Window) error {
	return ErrUnsupportedPlatform
}
