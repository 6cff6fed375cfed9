package browser

import (
	"context"
	"time"
)

// Element is a DOM element of the current page.
type Element interface {
	Click() error
	Text() (string, error)
	Attribute(name string) (string, error)
}

// Driver automates one browser window. Implementations translate their own
// timeout errors into ErrWaitTimeout.
type Driver interface {
	// Find returns the first element matching a CSS selector, or
	// ErrElementNotFound.
	Find(selector string) (Element, error)
	FindAll(selector string) ([]Element, error)

	// WaitVisible waits up to timeout for a matching element to be visible.
	WaitVisible(selector string, timeout time.Duration) (Element, error)
	// WaitClickable waits up to timeout for a matching element to be
	// visible, enabled, stable and not covered by another element.
	WaitClickable(selector string, timeout time.Duration) (Element, error)

	Navigate(url string, timeout time.Duration) error
	Refresh(timeout time.Duration) error
	Maximize() error
	ClearCookies() error

	// Close closes the window and releases the driver.
	Close() error
}

// LaunchOptions configures the browser a Launcher starts.
type LaunchOptions struct {
	Headless            bool
	AcceptInsecureCerts bool
	// Preferences are Firefox user prefs, applied to the profile.
	Preferences map[string]any
	// ProxyAddress is the SOCKS5 "host:port", or "" for a direct connection.
	ProxyAddress string
	DriverDir    string
	Timeout      time.Duration
}

// Launcher starts a browser and returns its Driver.
type Launcher interface {
	Launch(ctx context.Context, opts LaunchOptions) (Driver, error)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context, opts LaunchOptions) (Driver, error)

// Launch calls f.
func (f LauncherFunc) Launch(ctx context.Context, opts LaunchOptions) (Driver, error) {
	return f(ctx, opts)
}

// Installer is implemented by launchers that fetch driver files before
// their first launch. Install is not time limited; a cold install can run
// for minutes.
type Installer interface {
	Install(ctx context.Context, dir string) error
}
