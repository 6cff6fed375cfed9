package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/torfox/internal/browser"
	"github.com/nao1215/torfox/internal/config"
	"github.com/nao1215/torfox/internal/paths"
	"github.com/nao1215/torfox/internal/shutdown"
	"github.com/nao1215/torfox/internal/supervisor"
	"github.com/nao1215/torfox/internal/tor"
	"github.com/spf13/cobra"
)

// NewOpenCmd creates the open command.
func NewOpenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open [url]",
		Short: "Open a Tor-routed Firefox window",
		Long: `Open starts Tor, launches Firefox bound to it and opens a page.

The window stays open until you press Ctrl+C. torfox then closes the
browser, stops Tor and terminates any leftover toolchain processes.

Firefox preferences are read from the browser settings file (see
"torfox init --settings"). Values there override the generated proxy
preferences.

Examples:
  # Open check.torproject.org through the Tor Browser bundle
  torfox open

  # Open a hidden service through a private Tor daemon
  torfox open --tor-mode embedded http://exampleonionaddress.onion/

  # Use a system Tor daemon
  torfox open --tor-mode external --tor-proxy 127.0.0.1:9050

  # Plain Firefox, no Tor
  torfox open --no-onion https://example.com/`,
		Args: cobra.MaximumNArgs(1),
		RunE: runOpenCmd,
	}

	cmd.Flags().Bool("headless", false,
		"Start Firefox without a window")
	cmd.Flags().Bool("no-onion", false,
		"Do not route traffic through Tor")
	cmd.Flags().Bool("strict-certs", false,
		"Reject invalid TLS certificates")
	cmd.Flags().String("tor-mode", string(config.TorModeBundle),
		"Tor source: bundle, embedded or external")
	cmd.Flags().String("tor-proxy", config.DefaultBundleProxyAddress,
		"Tor SOCKS5 proxy address (bundle and external modes)")
	cmd.Flags().String("tor-browser", "",
		"Tor Browser executable (default: Desktop/Tor Browser/Browser/firefox.exe)")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartTimeout,
		"Timeout for Tor startup")
	cmd.Flags().String("settings", "",
		"Browser settings JSON file")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .torfox in current or home directory)")

	return cmd
}

// buildOpenConfig applies the open flags that were set on top of the
// configuration file.
func buildOpenConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("headless") {
		if cfg.Headless, err = flags.GetBool("headless"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("no-onion") {
		noOnion, err := flags.GetBool("no-onion")
		if err != nil {
			return nil, err
		}
		cfg.OnionNetwork = !noOnion
	}
	if flags.Changed("strict-certs") {
		strict, err := flags.GetBool("strict-certs")
		if err != nil {
			return nil, err
		}
		cfg.AcceptInsecureCerts = !strict
	}
	if flags.Changed("tor-mode") {
		mode, err := flags.GetString("tor-mode")
		if err != nil {
			return nil, err
		}
		cfg.TorMode = config.TorMode(mode)
	}
	if flags.Changed("tor-proxy") {
		if cfg.TorProxyAddress, err = flags.GetString("tor-proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("tor-browser") {
		if cfg.TorBrowserPath, err = flags.GetString("tor-browser"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("tor-timeout") {
		if cfg.TorStartTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("settings") {
		if cfg.SettingsPath, err = flags.GetString("settings"); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// runOpenCmd executes the open command.
func runOpenCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildOpenConfig(cmd)
	if err != nil {
		return err
	}
	target := cfg.StartURL
	if len(args) > 0 {
		target = args[0]
	}
	if err := tor.ValidateURL(target); err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg)

	// Cleanup runs on every exit path, including interrupts during startup.
	hooks := &shutdown.Hooks{}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.CallTimeout+cfg.KillGrace)
		defer cancel()
		if err := hooks.Run(ctx); err != nil {
			logger.Warn("cleanup failed", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, closing browser...")
			cancel()
		case <-ctx.Done():
		}
	}()

	resolver := paths.New()
	sup := supervisor.New(
		supervisor.WithResolver(resolver),
		supervisor.WithTorBrowserPath(cfg.TorBrowserPath),
		supervisor.WithKillGrace(cfg.KillGrace),
		supervisor.WithLogger(logger),
		supervisor.WithHooks(hooks),
		supervisor.WithStatusWriter(cmd.ErrOrStderr()),
		supervisor.WithReadyProbe(socksProbe(cfg.TorProxyAddress)),
	)

	sess, err := browser.New(ctx, cfg,
		browser.WithSupervisor(sup),
		browser.WithResolver(resolver),
		browser.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	hooks.Register("close browser", sess.Close)

	if err := sess.Navigate(ctx, target); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Opened %s in %s. Press Ctrl+C to close.\n", target, sess)

	<-ctx.Done()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.CallTimeout)
	defer closeCancel()
	return sess.Close(closeCtx)
}

// socksProbe reports readiness once the bundle's SOCKS port completes a
// handshake. It serves platforms without window inspection.
func socksProbe(address string) supervisor.ReadyProbe {
	return func(ctx context.Context) bool {
		client, err := tor.NewClient(address, 5*time.Second)
		if err != nil {
			return false
		}
		return client.CheckConnection(ctx) == tor.ProxyStatusOK
	}
}
