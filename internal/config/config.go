package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// TorMode selects where the Tor SOCKS proxy comes from.
type TorMode string

const (
	// TorModeBundle launches the Tor Browser bundle from the user's Desktop
	// and waits for its ready window.
	TorModeBundle TorMode = "bundle"

	// TorModeEmbedded starts a Tor daemon through tornago.
	TorModeEmbedded TorMode = "embedded"

	// TorModeExternal uses an already running Tor SOCKS proxy.
	TorModeExternal TorMode = "external"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "torfox"

	// DefaultBundleProxyAddress is the SOCKS port the Tor Browser bundle
	// listens on. The system tor daemon uses 9050 instead.
	DefaultBundleProxyAddress = "127.0.0.1:9150"

	// DefaultTorStartTimeout bounds the wait for the Tor Browser ready window.
	DefaultTorStartTimeout = 80 * time.Second

	// DefaultCallTimeout bounds every driver call that can hang.
	DefaultCallTimeout = 80 * time.Second

	// DefaultWaitTimeout is the per-call budget of presence/clickable waits.
	DefaultWaitTimeout = 90 * time.Second

	// DefaultKillGrace is how long teardown waits for terminated processes
	// to exit before asking survivors once more.
	DefaultKillGrace = 10 * time.Second

	// DefaultClosePause is the pause between closing the window and the
	// process teardown that follows it.
	DefaultClosePause = 1 * time.Second

	// DefaultStartURL is opened when `torfox open` gets no argument.
	DefaultStartURL = "https://check.torproject.org/"
)

// Config holds all options for a browser session.
// It is populated from defaults, then the config file, then CLI flags.
type Config struct {
	// Headless starts Firefox without a window.
	Headless bool

	// OnionNetwork routes browser traffic through Tor.
	OnionNetwork bool

	// AcceptInsecureCerts makes the browser accept invalid TLS certificates.
	// Hidden services commonly use self-signed certificates.
	AcceptInsecureCerts bool

	// TorMode selects the Tor source. Only used when OnionNetwork is true.
	TorMode TorMode

	// TorProxyAddress is the SOCKS5 address in "host:port" format.
	// In bundle mode it is the port the bundle opens; in external mode it is
	// the user's proxy; in embedded mode it is replaced by the daemon's port.
	TorProxyAddress string

	// TorBrowserPath overrides the Desktop-relative Tor Browser executable.
	TorBrowserPath string

	// TorStartTimeout bounds Tor startup in every mode.
	TorStartTimeout time.Duration

	// CallTimeout bounds lookups, navigation and close.
	CallTimeout time.Duration

	// WaitTimeout is the default budget of presence and clickable waits.
	WaitTimeout time.Duration

	// KillGrace is the grace period of related-process teardown.
	KillGrace time.Duration

	// ClosePause is the pause used between close steps.
	ClosePause time.Duration

	// SettingsPath is the browser settings JSON file. Empty means the
	// default location in the data directory.
	SettingsPath string

	// ConfigFilePath is the YAML configuration file. Empty means search.
	ConfigFilePath string

	// StartURL is the page opened after launch.
	StartURL string

	// Verbose enables debug logging.
	Verbose bool

	// JSONLog switches log output to JSON.
	JSONLog bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Headless:            false,
		OnionNetwork:        true,
		AcceptInsecureCerts: true,
		TorMode:             TorModeBundle,
		TorProxyAddress:     DefaultBundleProxyAddress,
		TorStartTimeout:     DefaultTorStartTimeout,
		CallTimeout:         DefaultCallTimeout,
		WaitTimeout:         DefaultWaitTimeout,
		KillGrace:           DefaultKillGrace,
		ClosePause:          DefaultClosePause,
		StartURL:            DefaultStartURL,
	}
}

// XDGDataDir returns the XDG data directory for torfox.
// On Windows: %LOCALAPPDATA%\torfox
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for torfox.
// On Windows: %APPDATA%\torfox
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	switch c.TorMode {
	case TorModeBundle, TorModeEmbedded, TorModeExternal:
	default:
		return ErrInvalidTorMode
	}

	if c.OnionNetwork && c.TorMode == TorModeExternal && c.TorProxyAddress == "" {
		return ErrMissingProxyAddress
	}

	if c.TorStartTimeout <= 0 || c.CallTimeout <= 0 || c.WaitTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.KillGrace < 0 {
		return ErrInvalidKillGrace
	}

	if c.ClosePause < 0 {
		return ErrInvalidClosePause
	}

	return nil
}
