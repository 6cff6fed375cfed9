package config

import "errors"

// Configuration validation errors returned by Config.Validate().
var (
	// ErrInvalidTorMode is returned when TorMode is not bundle, embedded or external.
	ErrInvalidTorMode = errors.New("invalid tor mode: must be bundle, embedded or external")

	// ErrMissingProxyAddress is returned when external mode has no proxy address.
	ErrMissingProxyAddress = errors.New("external tor mode requires a proxy address")

	// ErrInvalidTimeout is returned when a start, call or wait timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidKillGrace is returned when the kill grace period is negative.
	ErrInvalidKillGrace = errors.New("invalid kill grace: must be non-negative")

	// ErrInvalidClosePause is returned when the close pause is negative.
	ErrInvalidClosePause = errors.New("invalid close pause: must be non-negative")
)

// Settings file errors.
var (
	// ErrSettingsNotFound is returned when the browser settings file does not exist.
	ErrSettingsNotFound = errors.New("browser settings file not found")

	// ErrInvalidPreference is returned when a settings value is not a
	// boolean, number or string. Firefox preferences are scalar.
	ErrInvalidPreference = errors.New("invalid preference value: must be a boolean, number or string")
)
