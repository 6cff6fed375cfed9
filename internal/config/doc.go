// Package config provides configuration structures and utilities for torfox.
// It defines session options, Tor launch and timeout settings, the optional
// YAML configuration file, and the browser settings file whose keys are
// decoded into Firefox preference names.
package config
