package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/nao1215/torfox/internal/bounded"
	"github.com/nao1215/torfox/internal/paths"
	"github.com/nao1215/torfox/internal/shutdown"
)

const (
	// DefaultStartTimeout is used when Start is given a non-positive timeout.
	DefaultStartTimeout = 80 * time.Second

	// DefaultKillGrace is how long KillRelated waits for processes to exit.
	DefaultKillGrace = 10 * time.Second

	// DefaultPollInterval is the delay between window and liveness polls.
	DefaultPollInterval = 250 * time.Millisecond

	// startSlack is added to the Start timeout for the outer bound, so the
	// polling loop reports its own timeout first.
	startSlack = 5 * time.Second
)

// LaunchFunc spawns the Tor Browser executable at path.
type LaunchFunc func(ctx context.Context, path string) (*TorProcess, error)

// ReadyProbe reports whether Tor accepts connections. Start consults it
// when the window system is unsupported.
type ReadyProbe func(ctx context.Context) bool

// Supervisor starts Tor and cleans up related processes.
type Supervisor struct {
	resolver     *paths.Resolver
	torPath      string
	procs        ProcessTable
	windows      WindowSystem
	launch       LaunchFunc
	probe        ReadyProbe
	status       *status
	logger       *slog.Logger
	hooks        *shutdown.Hooks
	killGrace    time.Duration
	pollInterval time.Duration

	registerOnce sync.Once
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithResolver sets the path resolver used to locate the Tor Browser.
func WithResolver(r *paths.Resolver) Option {
	return func(s *Supervisor) { s.resolver = r }
}

// WithTorBrowserPath overrides the resolved Tor Browser executable.
func WithTorBrowserPath(path string) Option {
	return func(s *Supervisor) { s.torPath = path }
}

// WithProcessTable replaces the OS process table.
func WithProcessTable(t ProcessTable) Option {
	return func(s *Supervisor) { s.procs = t }
}

// WithWindowSystem replaces the native window system.
func WithWindowSystem(w WindowSystem) Option {
	return func(s *Supervisor) { s.windows = w }
}

// WithLauncher replaces the function spawning the Tor Browser.
func WithLauncher(fn LaunchFunc) Option {
	return func(s *Supervisor) { s.launch = fn }
}

// WithReadyProbe sets the readiness fallback for platforms without
// window inspection.
func WithReadyProbe(fn ReadyProbe) Option {
	return func(s *Supervisor) { s.probe = fn }
}

// WithStatusWriter sets where the colored progress lines go.
func WithStatusWriter(w io.Writer) Option {
	return func(s *Supervisor) { s.status = newStatus(w) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Supervisor) { s.logger = l }
}

// WithHooks makes Start register KillRelated as a shutdown hook.
func WithHooks(h *shutdown.Hooks) Option {
	return func(s *Supervisor) { s.hooks = h }
}

// WithKillGrace sets how long KillRelated waits before the second request.
func WithKillGrace(d time.Duration) Option {
	return func(s *Supervisor) { s.killGrace = d }
}

// WithPollInterval sets the delay between polls.
func WithPollInterval(d time.Duration) Option {
	return func(s *Supervisor) { s.pollInterval = d }
}

// New creates a Supervisor bound to the native process table and windows.
func New(opts ...Option) *Supervisor {
	s := &Supervisor{
		procs:        NativeProcesses(),
		windows:      NativeWindows(),
		launch:       launchExecutable,
		status:       newStatus(os.Stderr),
		logger:       slog.New(slog.DiscardHandler),
		killGrace:    DefaultKillGrace,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = paths.New()
	}
	if s.pollInterval <= 0 {
		s.pollInterval = DefaultPollInterval
	}
	return s
}

// Start launches the Tor Browser and waits until it reports ready.
//
// The polling loop gives up after timeout, terminates the spawned process
// and returns ErrTorStartTimeout. The whole call is also bounded by
// timeout plus a few seconds in case a window enumeration never returns.
func (s *Supervisor) Start(ctx context.Context, timeout time.Duration) (*TorProcess, error) {
	if timeout <= 0 {
		timeout = DefaultStartTimeout
	}

	proc, err := bounded.Value(ctx, timeout+startSlack, func(ctx context.Context) (*TorProcess, error) {
		return s.start(ctx, timeout)
	})
	if err != nil {
		if errors.Is(err, bounded.ErrTimeout) && !errors.Is(err, ErrTorStartTimeout) {
			return nil, fmt.Errorf("%w after %s", ErrTorStartTimeout, timeout+startSlack)
		}
		return nil, err
	}
	return proc, nil
}

func (s *Supervisor) start(ctx context.Context, timeout time.Duration) (*TorProcess, error) {
	s.status.starting()

	if err := s.KillRelated(ctx); err != nil {
		return nil, fmt.Errorf("failed to clean up before starting Tor: %w", err)
	}

	path, err := s.torBrowserPath()
	if err != nil {
		return nil, err
	}

	s.logger.Debug("launching Tor Browser", "path", path)
	proc, err := s.launch(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to launch Tor Browser: %w", err)
	}

	if s.hooks != nil {
		s.registerOnce.Do(func() {
			s.hooks.Register("kill related processes", s.ShutdownHook())
		})
	}

	started := time.Now()
	deadline := started.Add(timeout)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		found, err := s.pollReady(ctx)
		if err != nil {
			s.abort(proc)
			return nil, err
		}
		if found > 0 {
			s.status.ready(found)
			s.logger.Debug("Tor is ready", "elapsed", time.Since(started).Round(time.Millisecond))
			return proc, nil
		}

		now := time.Now()
		s.status.remaining(deadline.Sub(now))
		if !now.Before(deadline) {
			s.abort(proc)
			return nil, fmt.Errorf("%w after %s", ErrTorStartTimeout, timeout)
		}

		select {
		case <-ctx.Done():
			s.abort(proc)
			return nil, fmt.Errorf("%w: %w", ErrTorStartTimeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

// pollReady minimizes every ready window and returns how many it found.
func (s *Supervisor) pollReady(ctx context.Context) (int, error) {
	wins, err := s.windows.Windows()
	if errors.Is(err, ErrUnsupportedPlatform) {
		if s.probe == nil {
			return 0, err
		}
		if s.probe(ctx) {
			return 1, nil
		}
		return 0, nil
	}
	if err != nil {
		s.logger.Debug("window enumeration failed", "error", err)
		return 0, nil
	}

	found := 0
	for _, w := range wins {
		if !IsReadyTitle(w.Title) {
			continue
		}
		if err := s.windows.Minimize(w); err != nil {
			s.logger.Debug("failed to minimize window", "title", w.Title, "error", err)
		}
		found++
	}
	return found, nil
}

func (s *Supervisor) abort(proc *TorProcess) {
	if err := proc.Terminate(); err != nil {
		s.logger.Warn("failed to terminate Tor Browser", "pid", proc.PID(), "error", err)
	}
}

func (s *Supervisor) torBrowserPath() (string, error) {
	if s.torPath != "" {
		return s.torPath, nil
	}
	path, err := s.resolver.TorBrowserPath()
	if err != nil {
		return "", fmt.Errorf("failed to resolve Tor Browser path: %w", err)
	}
	return path, nil
}

// KillRelated asks every toolchain process to exit, waits up to the kill
// grace period, then asks the survivors once more. Processes that vanish
// in between are ignored. Calling it with nothing to kill is a no-op.
func (s *Supervisor) KillRelated(ctx context.Context) error {
	procs, err := s.procs.List()
	if err != nil {
		return err
	}

	self := os.Getpid()
	var targets []int
	for _, p := range procs {
		if p.PID == self || !MatchProcessName(p.Executable) {
			continue
		}
		if s.terminate(p.PID) {
			targets = append(targets, p.PID)
		}
	}
	if len(targets) == 0 {
		return nil
	}

	for _, pid := range s.waitExit(ctx, targets) {
		s.logger.Debug("process survived the grace period", "pid", pid)
		s.terminate(pid)
	}
	return nil
}

// terminate requests termination and reports whether the process may
// still be alive.
func (s *Supervisor) terminate(pid int) bool {
	err := s.procs.Terminate(pid)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrNoSuchProcess):
		return false
	default:
		s.logger.Warn("failed to terminate process", "pid", pid, "error", err)
		return true
	}
}

// waitExit polls until every pid has exited or the grace period ends and
// returns the survivors.
func (s *Supervisor) waitExit(ctx context.Context, pids []int) []int {
	deadline := time.Now().Add(s.killGrace)
	alive := pids
	for {
		alive = s.stillAlive(alive)
		if len(alive) == 0 || !time.Now().Before(deadline) {
			return alive
		}

		timer := time.NewTimer(s.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return alive
		case <-timer.C:
		}
	}
}

func (s *Supervisor) stillAlive(pids []int) []int {
	var alive []int
	for _, pid := range pids {
		ok, err := s.procs.Alive(pid)
		if err != nil {
			s.logger.Debug("failed to check process", "pid", pid, "error", err)
			ok = true
		}
		if ok {
			alive = append(alive, pid)
		}
	}
	return alive
}

// ShutdownHook returns KillRelated in the form shutdown.Hooks expects.
func (s *Supervisor) ShutdownHook() shutdown.Func {
	return s.KillRelated
}

// launchExecutable starts path detached from ctx; Tor must outlive Start.
func launchExecutable(_ context.Context, path string) (*TorProcess, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("tor browser not found at %s: %w", path, err)
	}

	cmd := exec.Command(path) //nolint:gosec,noctx // path comes from the resolver or the user's own flag
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()

	return NewTorProcess(cmd.Process.Pid, func() error {
		select {
		case <-done:
			return nil
		default:
		}
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return err
		}
		<-done
		return nil
	}), nil
}
