package supervisor

import (
	"fmt"
	"regexp"
	"sync"

	ps "github.com/mitchellh/go-ps"
)

// relatedProcessPattern matches the executable basenames of the Tor Browser
// and browser-automation toolchain. The whole basename must match.
var relatedProcessPattern = regexp.MustCompile(`(?i)^(jqs|javaw|java|geckodriver|phantomjs|firefox)(\.exe)?$`)

// MatchProcessName reports whether an executable basename belongs to the
// toolchain KillRelated tears down.
func MatchProcessName(name string) bool {
	return relatedProcessPattern.MatchString(name)
}

// Process is one entry of the OS process table.
type Process struct {
	PID        int
	Executable string
}

// ProcessTable lists and signals OS processes.
type ProcessTable interface {
	List() ([]Process, error)
	// Terminate asks the process to exit. It returns ErrNoSuchProcess when
	// the process is already gone.
	Terminate(pid int) error
	Alive(pid int) (bool, error)
}

// NativeProcesses returns the ProcessTable of the running OS.
func NativeProcesses() ProcessTable {
	return osProcessTable{}
}

type osProcessTable struct{}

func (osProcessTable) List() ([]Process, error) {
	procs, err := ps.Processes()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate processes: %w", err)
	}
	result := make([]Process, 0, len(procs))
	for _, p := range procs {
		result = append(result, Process{PID: p.Pid(), Executable: p.Executable()})
	}
	return result, nil
}

func (osProcessTable) Terminate(pid int) error {
	return terminate(pid)
}

func (osProcessTable) Alive(pid int) (bool, error) {
	p, err := ps.FindProcess(pid)
	if err != nil {
		return false, err
	}
	return p != nil, nil
}

// TorProcess is the handle of the spawned Tor Browser process.
type TorProcess struct {
	pid  int
	stop func() error

	once sync.Once
	err  error
}

// NewTorProcess wraps a running process. stop is called at most once.
func NewTorProcess(pid int, stop func() error) *TorProcess {
	return &TorProcess{pid: pid, stop: stop}
}

// PID returns the process id.
func (p *TorProcess) PID() int {
	return p.pid
}

// Terminate stops the process. Later calls return the first result.
func (p *TorProcess) Terminate() error {
	if p == nil {
		return nil
	}
	p.once.Do(func() {
		if p.stop != nil {
			p.err = p.stop()
		}
	})
	return p.err
}
