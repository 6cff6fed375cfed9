package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for torfox.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "torfox",
		Short: "Tor-routed Firefox sessions",
		Long: `torfox launches Firefox with its traffic routed through Tor.

By default torfox starts the Tor Browser bundle installed on your Desktop,
waits until it reports ready, and points a separate Firefox at the
bundle's SOCKS port. Use --tor-mode embedded to run a private Tor daemon
or --tor-mode external to use an existing SOCKS5 proxy.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json-log", false, "Write logs as JSON")

	cmd.AddCommand(NewOpenCmd())
	cmd.AddCommand(NewKillCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
