package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/torfox/internal/bounded"
	"github.com/nao1215/torfox/internal/config"
	"github.com/nao1215/torfox/internal/paths"
	"github.com/nao1215/torfox/internal/supervisor"
	"github.com/nao1215/torfox/internal/tor"
)

// waitSlack is added to a wait's own timeout for its outer bound, so the
// driver reports ErrWaitTimeout before the bound fires.
const waitSlack = 5 * time.Second

// Supervisor starts the Tor Browser bundle and tears down related
// processes. *supervisor.Supervisor implements it.
type Supervisor interface {
	Start(ctx context.Context, timeout time.Duration) (*supervisor.TorProcess, error)
	KillRelated(ctx context.Context) error
}

// TorDaemon is a running private tor process. *tor.Daemon implements it.
type TorDaemon interface {
	SocksAddr() string
	Stop() error
}

// DaemonStarter brings up a private tor process within timeout.
type DaemonStarter func(ctx context.Context, timeout time.Duration) (TorDaemon, error)

// ProxyChecker reports the state of a SOCKS5 proxy.
type ProxyChecker func(ctx context.Context, address string) tor.ProxyStatus

// Session is a Firefox window, optionally routed through Tor.
type Session struct {
	cfg        *config.Config
	supervisor Supervisor
	resolver   *paths.Resolver
	launcher   Launcher
	startTord  DaemonStarter
	checkProxy ProxyChecker
	logger     *slog.Logger

	driver       Driver
	proxyAddress string
	stopTor      func() error

	mu     sync.Mutex
	closed bool
}

// Option configures a Session.
type Option func(*Session)

// WithSupervisor replaces the process supervisor.
func WithSupervisor(s Supervisor) Option {
	return func(sess *Session) { sess.supervisor = s }
}

// WithResolver replaces the path resolver.
func WithResolver(r *paths.Resolver) Option {
	return func(sess *Session) { sess.resolver = r }
}

// WithLauncher replaces the Playwright launcher.
func WithLauncher(l Launcher) Option {
	return func(sess *Session) { sess.launcher = l }
}

// WithDaemonStarter replaces how the embedded tor mode starts its daemon.
func WithDaemonStarter(fn DaemonStarter) Option {
	return func(sess *Session) { sess.startTord = fn }
}

// WithProxyChecker replaces the SOCKS5 handshake check.
func WithProxyChecker(fn ProxyChecker) Option {
	return func(sess *Session) { sess.checkProxy = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(sess *Session) { sess.logger = l }
}

// New starts Tor when cfg.OnionNetwork is set, launches Firefox with the
// proxy and settings-file preferences, maximizes the window and clears
// all cookies. On failure everything already started is torn down.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &Session{
		cfg:      cfg,
		launcher: PlaywrightLauncher{},
		logger:   slog.New(slog.DiscardHandler),
	}
	s.checkProxy = s.defaultCheckProxy
	s.startTord = s.defaultStartDaemon
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = paths.New()
	}
	if s.supervisor == nil {
		s.supervisor = supervisor.New(
			supervisor.WithResolver(s.resolver),
			supervisor.WithTorBrowserPath(cfg.TorBrowserPath),
			supervisor.WithKillGrace(cfg.KillGrace),
			supervisor.WithLogger(s.logger),
		)
	}

	if err := s.open(ctx); err != nil {
		_ = s.teardown(ctx) //nolint:errcheck // the open error is more useful
		return nil, err
	}
	return s, nil
}

func (s *Session) open(ctx context.Context) error {
	launch := LaunchOptions{
		Headless:            s.cfg.Headless,
		AcceptInsecureCerts: s.cfg.AcceptInsecureCerts,
		Timeout:             s.cfg.CallTimeout,
	}

	if s.cfg.OnionNetwork {
		addr, err := s.startTor(ctx)
		if err != nil {
			return err
		}
		s.proxyAddress = addr

		prefs, err := ProxyPreferences(addr)
		if err != nil {
			return err
		}
		settings, err := s.GetSettings()
		if err != nil {
			return err
		}
		for k, v := range settings {
			prefs[k] = v
		}
		launch.Preferences = prefs
		launch.ProxyAddress = addr
	}

	driverDir, err := s.resolver.DriverDir()
	if err != nil {
		return err
	}
	launch.DriverDir = driverDir

	if installer, ok := s.launcher.(Installer); ok {
		s.logger.Debug("installing firefox driver", "dir", driverDir)
		if err := installer.Install(ctx, driverDir); err != nil {
			return fmt.Errorf("failed to install browser: %w", err)
		}
	}

	s.logger.Debug("launching firefox", "headless", launch.Headless, "proxy", launch.ProxyAddress, "preferences", len(launch.Preferences))
	driver, err := bounded.Value(ctx, s.cfg.CallTimeout, s.launch(launch))
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	s.driver = driver

	if err := driver.Maximize(); err != nil {
		s.logger.Warn("failed to maximize window", "error", err)
	}
	if err := driver.ClearCookies(); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return nil
}

// launch returns the bounded launch call. A driver that arrives after the
// bound fired is closed before it is dropped.
func (s *Session) launch(opts LaunchOptions) func(context.Context) (Driver, error) {
	return func(ctx context.Context) (Driver, error) {
		driver, err := s.launcher.Launch(ctx, opts)
		if err != nil {
			return nil, err
		}
		if ctx.Err() != nil {
			s.logger.Warn("closing browser that started after the launch timeout")
			if err := driver.Close(); err != nil {
				s.logger.Warn("failed to close late browser", "error", err)
			}
			return nil, ctx.Err()
		}
		return driver, nil
	}
}

// startTor brings up the configured Tor source and returns its SOCKS address.
func (s *Session) startTor(ctx context.Context) (string, error) {
	switch s.cfg.TorMode {
	case config.TorModeEmbedded:
		daemon, err := s.startTord(ctx, s.cfg.TorStartTimeout)
		if err != nil {
			return "", err
		}
		s.stopTor = daemon.Stop
		return daemon.SocksAddr(), nil

	case config.TorModeExternal:
		addr := s.cfg.TorProxyAddress
		if status := s.checkProxy(ctx, addr); status != tor.ProxyStatusOK {
			return "", fmt.Errorf("tor proxy %s: %w", addr, status.Error())
		}
		return addr, nil

	default:
		proc, err := s.supervisor.Start(ctx, s.cfg.TorStartTimeout)
		if err != nil {
			return "", err
		}
		s.stopTor = proc.Terminate

		addr := s.cfg.TorProxyAddress
		if addr == "" {
			addr = config.DefaultBundleProxyAddress
		}
		if status := s.checkProxy(ctx, addr); status != tor.ProxyStatusOK {
			s.logger.Warn("tor browser SOCKS port is not answering", "address", addr, "status", status.String())
		}
		return addr, nil
	}
}

func (s *Session) defaultStartDaemon(ctx context.Context, timeout time.Duration) (TorDaemon, error) {
	daemon, err := tor.StartDaemon(ctx, timeout, s.logger)
	if err != nil {
		return nil, err
	}
	return daemon, nil
}

func (s *Session) defaultCheckProxy(ctx context.Context, address string) tor.ProxyStatus {
	client, err := tor.NewClient(address, s.cfg.CallTimeout)
	if err != nil {
		return tor.ProxyStatusCannotConnect
	}
	return client.CheckConnection(ctx)
}

// ProxyPreferences returns the Firefox preferences routing all traffic,
// DNS included, through the SOCKS5 proxy at address.
func ProxyPreferences(address string) (map[string]any, error) {
	host, port, err := tor.SplitProxyAddress(address)
	if err != nil {
		return nil, fmt.Errorf("invalid tor proxy address %q: %w", address, err)
	}
	return map[string]any{
		"network.proxy.type":             1,
		"network.proxy.socks":            host,
		"network.proxy.socks_port":       port,
		"network.proxy.socks_version":    5,
		"network.proxy.socks_remote_dns": true,
	}, nil
}

// GetSettings reads the browser settings file and returns its decoded
// preferences.
func (s *Session) GetSettings() (map[string]any, error) {
	return config.LoadSettings(s.settingsPath())
}

func (s *Session) settingsPath() string {
	if s.cfg.SettingsPath != "" {
		return s.cfg.SettingsPath
	}
	return s.resolver.SettingsPath()
}

// ProxyAddress returns the SOCKS5 address in use, or "" without Tor.
func (s *Session) ProxyAddress() string {
	return s.proxyAddress
}

// Close closes the window, pauses, and kills related processes. With Tor
// it then stops Tor, pauses again and repeats the kill. The second and
// later calls return nil.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	return bounded.Run(ctx, s.cfg.CallTimeout, func(ctx context.Context) error {
		return s.teardown(ctx)
	})
}

func (s *Session) teardown(ctx context.Context) error {
	var errs []error

	s.mu.Lock()
	driver := s.driver
	s.driver = nil
	s.mu.Unlock()

	if driver != nil {
		if err := driver.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	pause(ctx, s.cfg.ClosePause)

	if err := s.supervisor.KillRelated(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to kill related processes: %w", err))
	}

	if s.cfg.OnionNetwork {
		if s.stopTor != nil {
			if err := s.stopTor(); err != nil {
				errs = append(errs, fmt.Errorf("failed to stop tor: %w", err))
			}
			s.stopTor = nil
		}
		pause(ctx, s.cfg.ClosePause)
		if err := s.supervisor.KillRelated(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to kill related processes: %w", err))
		}
	}

	return errors.Join(errs...)
}

func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// current returns the driver, or ErrSessionClosed.
func (s *Session) current() (Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.driver == nil {
		return nil, ErrSessionClosed
	}
	return s.driver, nil
}

// FindElement returns the first element matching a CSS selector.
func (s *Session) FindElement(ctx context.Context, selector string) (Element, error) {
	d, err := s.current()
	if err != nil {
		return nil, err
	}
	return bounded.Value(ctx, s.cfg.CallTimeout, func(context.Context) (Element, error) {
		return d.Find(selector)
	})
}

// FindAllElements returns every element matching a CSS selector.
func (s *Session) FindAllElements(ctx context.Context, selector string) ([]Element, error) {
	d, err := s.current()
	if err != nil {
		return nil, err
	}
	return bounded.Value(ctx, s.cfg.CallTimeout, func(context.Context) ([]Element, error) {
		return d.FindAll(selector)
	})
}

// WaitForPresence waits until a matching element is visible. A zero
// timeout uses the configured wait timeout.
func (s *Session) WaitForPresence(ctx context.Context, selector string, timeout time.Duration) (Element, error) {
	return s.wait(ctx, selector, timeout, Driver.WaitVisible)
}

// WaitForClickable waits until a matching element can receive a click.
// A zero timeout uses the configured wait timeout.
func (s *Session) WaitForClickable(ctx context.Context, selector string, timeout time.Duration) (Element, error) {
	return s.wait(ctx, selector, timeout, Driver.WaitClickable)
}

func (s *Session) wait(ctx context.Context, selector string, timeout time.Duration,
	fn func(Driver, string, time.Duration) (Element, error)) (Element, error) {
	d, err := s.current()
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = s.cfg.WaitTimeout
	}

	el, err := bounded.Value(ctx, timeout+waitSlack, func(context.Context) (Element, error) {
		return fn(d, selector, timeout)
	})
	if err != nil && errors.Is(err, bounded.ErrTimeout) && !errors.Is(err, ErrWaitTimeout) {
		return nil, fmt.Errorf("%w: %s: %w", ErrWaitTimeout, selector, err)
	}
	return el, err
}

// ClickButton waits for a clickable element, clicks it and returns it.
func (s *Session) ClickButton(ctx context.Context, selector string, timeout time.Duration) (Element, error) {
	el, err := s.WaitForClickable(ctx, selector, timeout)
	if err != nil {
		return nil, err
	}
	err = bounded.Run(ctx, s.cfg.CallTimeout, func(context.Context) error {
		return el.Click()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return el, nil
}

// Navigate opens rawURL. Malformed .onion hosts are rejected before any
// request is made.
func (s *Session) Navigate(ctx context.Context, rawURL string) error {
	if err := tor.ValidateURL(rawURL); err != nil {
		return err
	}
	d, err := s.current()
	if err != nil {
		return err
	}
	s.logger.Debug("navigating", "url", rawURL)
	return bounded.Run(ctx, s.cfg.CallTimeout+waitSlack, func(context.Context) error {
		return d.Navigate(rawURL, s.cfg.CallTimeout)
	})
}

// Refresh reloads the current page.
func (s *Session) Refresh(ctx context.Context) error {
	d, err := s.current()
	if err != nil {
		return err
	}
	return bounded.Run(ctx, s.cfg.CallTimeout+waitSlack, func(context.Context) error {
		return d.Refresh(s.cfg.CallTimeout)
	})
}

// String describes the session for logs.
func (s *Session) String() string {
	if s.proxyAddress == "" {
		return "firefox (direct)"
	}
	return fmt.Sprintf("firefox via socks5://%s (%s, headless=%t)", s.proxyAddress, s.cfg.TorMode, s.cfg.Headless)
}
