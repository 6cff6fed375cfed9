package tor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/tornago"
)

// DefaultDaemonTimeout bounds bootstrapping when no timeout is given.
const DefaultDaemonTimeout = 3 * time.Minute

// Daemon is a private tor process that a browser is pointed at when no
// Tor Browser bundle is installed.
type Daemon struct {
	proc  *tornago.TorProcess
	socks string

	once    sync.Once
	stopErr error
}

// StartDaemon launches tor on OS-assigned ports and returns once it has
// bootstrapped. Bootstrapping can take minutes on a cold start. A daemon
// that finishes after ctx is done is stopped again.
func StartDaemon(ctx context.Context, timeout time.Duration, logger *slog.Logger) (*Daemon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultDaemonTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid tor launch settings: %w", err)
	}

	logger.Debug("bootstrapping embedded tor", "timeout", timeout)
	proc, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return nil, fmt.Errorf("embedded tor did not start: %w", err)
	}
	if err := ctx.Err(); err != nil {
		_ = proc.Stop() //nolint:errcheck // the context error is returned
		return nil, err
	}

	logger.Debug("embedded tor ready", "socks", proc.SocksAddr(), "control", proc.ControlAddr())
	return &Daemon{proc: proc, socks: proc.SocksAddr()}, nil
}

// SocksAddr is the daemon's SOCKS5 "host:port".
func (d *Daemon) SocksAddr() string {
	return d.socks
}

// Stop shuts the daemon down once; later calls return the first result.
func (d *Daemon) Stop() error {
	d.once.Do(func() {
		if d.proc != nil {
			d.stopErr = d.proc.Stop()
		}
	})
	return d.stopErr
}
