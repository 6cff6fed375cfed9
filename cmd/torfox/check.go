package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/nao1215/torfox/internal/config"
	"github.com/nao1215/torfox/internal/tor"
	"github.com/spf13/cobra"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that a SOCKS5 proxy is a working Tor client",
		Long: `Check performs a SOCKS5 handshake with the Tor proxy and then asks
check.torproject.org, through the proxy, whether the exit is a Tor relay.

Examples:
  # Check the Tor Browser bundle
  torfox check

  # Check a system Tor daemon
  torfox check --tor-proxy 127.0.0.1:9050`,
		Args: cobra.NoArgs,
		RunE: runCheckCmd,
	}

	cmd.Flags().String("tor-proxy", config.DefaultBundleProxyAddress,
		"Tor SOCKS5 proxy address")
	cmd.Flags().DurationP("timeout", "t", 30*time.Second,
		"HTTP timeout for the exit check")

	return cmd
}

func runCheckCmd(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("tor-proxy")
	if err != nil {
		return err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}

	client, err := tor.NewClient(addr, timeout)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()
	if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
		return fmt.Errorf("tor proxy %s: %w", addr, status.Error())
	}
	fmt.Fprintf(out, "SOCKS5 proxy %s: OK\n", addr)

	exit, err := client.CheckExit(ctx)
	if err != nil {
		return err
	}
	if !exit.IsTor {
		return fmt.Errorf("traffic through %s does not leave via Tor (exit %s)", addr, exit.IP)
	}
	color.New(color.FgGreen).Fprintf(out, "Traffic leaves via Tor exit %s\n", exit.IP) //nolint:errcheck // status output
	return nil
}
