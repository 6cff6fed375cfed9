package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/torfox/internal/config"
)

// TestNewInitCmd tests the init command creation.
func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
		if flag.DefValue != config.DefaultConfigFile {
			t.Errorf("expected default %q, got %q", config.DefaultConfigFile, flag.DefValue)
		}
	})

	t.Run("has force and settings flags", func(t *testing.T) {
		t.Parallel()
		if f := cmd.Flags().Lookup("force"); f == nil || f.Shorthand != "f" {
			t.Error("expected force flag with shorthand 'f'")
		}
		if cmd.Flags().Lookup("settings") == nil {
			t.Error("expected settings flag")
		}
	})
}

func runInit(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewInitCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// TestRunInitCmd tests the init command execution.
func TestRunInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates a loadable config file", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), ".torfox")
		out, err := runInit(t, "-o", outputPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, outputPath) {
			t.Errorf("expected output to mention %s, got %q", outputPath, out)
		}

		file, err := config.LoadConfigFile(outputPath)
		if err != nil {
			t.Fatalf("generated config does not load: %v", err)
		}
		cfg := config.NewConfig()
		file.ApplyTo(cfg)
		if err := cfg.Validate(); err != nil {
			t.Errorf("generated config is invalid: %v", err)
		}
		if cfg.TorMode != config.TorModeBundle {
			t.Errorf("expected bundle mode, got %q", cfg.TorMode)
		}
		if cfg.TorStartTimeout != config.DefaultTorStartTimeout {
			t.Errorf("expected %s tor start timeout, got %s", config.DefaultTorStartTimeout, cfg.TorStartTimeout)
		}
	})

	t.Run("creates a loadable settings file", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), "settings", "browser_settings.json")
		if _, err := runInit(t, "--settings", "-o", outputPath); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read settings: %v", err)
		}
		if !json.Valid(data) {
			t.Fatal("generated settings are not valid JSON")
		}

		prefs, err := config.LoadSettings(outputPath)
		if err != nil {
			t.Fatalf("generated settings do not load: %v", err)
		}
		if prefs["font.name.serif.x-western"] != "Times New Roman" {
			t.Errorf("expected decoded font preference, got %v", prefs["font.name.serif.x-western"])
		}
		if prefs["media.peerconnection.enabled"] != false {
			t.Errorf("expected WebRTC disabled, got %v", prefs["media.peerconnection.enabled"])
		}
		if prefs["network.cookie.lifetimePolicy"] != 2 {
			t.Errorf("expected integer preference, got %v", prefs["network.cookie.lifetimePolicy"])
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), ".torfox")
		if err := os.WriteFile(outputPath, []byte("existing"), 0600); err != nil {
			t.Fatal(err)
		}

		if _, err := runInit(t, "-o", outputPath); err == nil {
			t.Fatal("expected error for existing file")
		}
		content, _ := os.ReadFile(outputPath)
		if string(content) != "existing" {
			t.Error("existing file must be untouched")
		}

		if _, err := runInit(t, "-o", outputPath, "-f"); err != nil {
			t.Fatalf("unexpected error with -f: %v", err)
		}
		content, _ = os.ReadFile(outputPath)
		if string(content) == "existing" {
			t.Error("expected file to be overwritten with -f")
		}
	})
}
