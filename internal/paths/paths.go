// Package paths resolves the filesystem locations torfox depends on:
// the user's home and Desktop, the Tor Browser bundle, and the internal
// data directory where the browser driver is installed.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// UserProfileEnv is the environment variable holding the user's home
// directory on Windows.
const UserProfileEnv = "USERPROFILE"

// AppName is used for the XDG data directory.
const AppName = "torfox"

// ErrUserProfileNotSet is returned when USERPROFILE is absent or empty.
var ErrUserProfileNotSet = errors.New("the environment variable " + UserProfileEnv + " has not been set")

// Resolver resolves project paths. The zero value is not usable; call New.
type Resolver struct {
	lookupEnv func(string) (string, bool)
	dataDir   string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLookupEnv replaces os.LookupEnv, mainly for tests.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(r *Resolver) {
		r.lookupEnv = fn
	}
}

// WithDataDir overrides the internal data directory.
func WithDataDir(dir string) Option {
	return func(r *Resolver) {
		r.dataDir = dir
	}
}

// New creates a Resolver backed by the process environment and the XDG
// data directory.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		lookupEnv: os.LookupEnv,
		dataDir:   filepath.Join(xdg.DataHome, AppName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// UserHomeDir returns the value of USERPROFILE.
func (r *Resolver) UserHomeDir() (string, error) {
	home, ok := r.lookupEnv(UserProfileEnv)
	if !ok || home == "" {
		return "", ErrUserProfileNotSet
	}
	return home, nil
}

// DesktopDir returns the user's Desktop directory.
func (r *Resolver) DesktopDir() (string, error) {
	home, err := r.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Desktop"), nil
}

// TorBrowserPath returns the Tor Browser launcher expected at
// <Desktop>/Tor Browser/Browser/firefox.exe.
func (r *Resolver) TorBrowserPath() (string, error) {
	desktop, err := r.DesktopDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(desktop, "Tor Browser", "Browser", "firefox.exe"), nil
}

// DataDir returns the internal data directory.
func (r *Resolver) DataDir() string {
	return r.dataDir
}

// ExecutablesDir returns <data>/executables, creating it if needed.
func (r *Resolver) ExecutablesDir() (string, error) {
	dir := filepath.Join(r.dataDir, "executables")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create executables directory: %w", err)
	}
	return dir, nil
}

// DriverDir returns the directory the browser driver is installed into.
func (r *Resolver) DriverDir() (string, error) {
	dir, err := r.ExecutablesDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "playwright"), nil
}

// SettingsPath returns the default browser settings file location.
func (r *Resolver) SettingsPath() string {
	return filepath.Join(r.dataDir, "settings", "browser_settings.json")
}
