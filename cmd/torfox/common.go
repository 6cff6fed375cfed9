package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/torfox/internal/config"
	tflog "github.com/nao1215/torfox/internal/log"
	"github.com/spf13/cobra"
)

// getBoolFlag retrieves a bool from the command, falling back to the
// root's persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// loadConfig returns defaults overridden by the configuration file.
// An explicitly given file must exist; a searched one is optional.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.JSONLog = getBoolFlag(cmd, "json-log")

	explicitPath := ""
	if f := cmd.Flags().Lookup("config"); f != nil {
		explicitPath = f.Value.String()
	}

	path := config.FindConfigFile(explicitPath)
	if path == "" {
		if explicitPath != "" {
			return nil, fmt.Errorf("configuration file not found: %s", explicitPath)
		}
		return cfg, nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && explicitPath == "" {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	file.ApplyTo(cfg)
	cfg.ConfigFilePath = path
	return cfg, nil
}

// newLogger creates the logger selected by cfg.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.JSONLog {
		return tflog.NewJSONLogger(w, cfg.Verbose)
	}
	return tflog.NewLogger(w, cfg.Verbose)
}
