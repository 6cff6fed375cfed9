package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/torfox/internal/config"
	"github.com/nao1215/torfox/internal/paths"
	"github.com/spf13/cobra"
)

//go:embed templates/torfox.yaml templates/browser_settings.json
var templates embed.FS

const (
	configTemplate   = "templates/torfox.yaml"
	settingsTemplate = "templates/browser_settings.json"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration or browser settings file",
		Long: `Initialize creates a .torfox configuration file in the current directory.

With --settings it writes the Firefox preferences file instead. Its keys
encode preference names: "__" stands for "-" and "_" stands for ".", so
"font_name_serif_x__western" sets font.name.serif.x-western.

Examples:
  # Create .torfox in current directory
  torfox init

  # Create config file at a specific path
  torfox init -o myconfig.yaml

  # Write the browser settings to the default data directory
  torfox init --settings

  # Force overwrite existing file
  torfox init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing file")
	cmd.Flags().Bool("settings", false,
		"Write the browser settings JSON instead of the configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	settings, err := cmd.Flags().GetBool("settings")
	if err != nil {
		return err
	}

	template := configTemplate
	if settings {
		template = settingsTemplate
		if !cmd.Flags().Changed("output") {
			outputPath = paths.New().SettingsPath()
		}
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := templates.ReadFile(template)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	out := cmd.OutOrStdout()
	if settings {
		fmt.Fprintf(out, "Created browser settings file: %s\n", outputPath)
		return nil
	}
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure:")
	fmt.Fprintln(out, "  - Where Tor comes from (bundle, embedded, external)")
	fmt.Fprintln(out, "  - Headless mode and certificate handling")
	fmt.Fprintln(out, "  - Startup, lookup and wait timeouts")
	return nil
}
