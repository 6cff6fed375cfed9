package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".torfox"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .torfox configuration file.
// Pointer fields distinguish "not set" from an explicit false or zero.
type File struct {
	Browser  BrowserFile  `yaml:"browser,omitempty"`
	Tor      TorFile      `yaml:"tor,omitempty"`
	Timeouts TimeoutsFile `yaml:"timeouts,omitempty"`
}

// BrowserFile holds browser options.
type BrowserFile struct {
	Headless            *bool  `yaml:"headless,omitempty"`
	AcceptInsecureCerts *bool  `yaml:"acceptInsecureCerts,omitempty"`
	Settings            string `yaml:"settings,omitempty"`
	StartURL            string `yaml:"startURL,omitempty"`
}

// TorFile holds Tor options.
type TorFile struct {
	Enabled     *bool   `yaml:"enabled,omitempty"`
	Mode        TorMode `yaml:"mode,omitempty"`
	Proxy       string  `yaml:"proxy,omitempty"`
	BrowserPath string  `yaml:"browserPath,omitempty"`
}

// TimeoutsFile holds durations in Go syntax ("80s", "1m30s").
type TimeoutsFile struct {
	TorStart   time.Duration `yaml:"torStart,omitempty"`
	Call       time.Duration `yaml:"call,omitempty"`
	Wait       time.Duration `yaml:"wait,omitempty"`
	KillGrace  time.Duration `yaml:"killGrace,omitempty"`
	ClosePause time.Duration `yaml:"closePause,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// ApplyTo overrides cfg with every value set in the file.
func (cf *File) ApplyTo(cfg *Config) {
	if cf.Browser.Headless != nil {
		cfg.Headless = *cf.Browser.Headless
	}
	if cf.Browser.AcceptInsecureCerts != nil {
		cfg.AcceptInsecureCerts = *cf.Browser.AcceptInsecureCerts
	}
	if cf.Browser.Settings != "" {
		cfg.SettingsPath = cf.Browser.Settings
	}
	if cf.Browser.StartURL != "" {
		cfg.StartURL = cf.Browser.StartURL
	}

	if cf.Tor.Enabled != nil {
		cfg.OnionNetwork = *cf.Tor.Enabled
	}
	if cf.Tor.Mode != "" {
		cfg.TorMode = cf.Tor.Mode
	}
	if cf.Tor.Proxy != "" {
		cfg.TorProxyAddress = cf.Tor.Proxy
	}
	if cf.Tor.BrowserPath != "" {
		cfg.TorBrowserPath = cf.Tor.BrowserPath
	}

	if cf.Timeouts.TorStart > 0 {
		cfg.TorStartTimeout = cf.Timeouts.TorStart
	}
	if cf.Timeouts.Call > 0 {
		cfg.CallTimeout = cf.Timeouts.Call
	}
	if cf.Timeouts.Wait > 0 {
		cfg.WaitTimeout = cf.Timeouts.Wait
	}
	if cf.Timeouts.KillGrace > 0 {
		cfg.KillGrace = cf.Timeouts.KillGrace
	}
	if cf.Timeouts.ClosePause > 0 {
		cfg.ClosePause = cf.Timeouts.ClosePause
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .torfox in the current directory
// 3. Look for .torfox in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
