package supervisor

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

// status prints the human-facing progress lines of Start.
type status struct {
	w         io.Writer
	banner    *color.Color
	countdown *color.Color
	success   *color.Color
}

func newStatus(w io.Writer) *status {
	return &status{
		w:         w,
		banner:    color.New(color.FgBlue, color.Bold),
		countdown: color.New(color.FgRed),
		success:   color.New(color.FgGreen, color.Bold),
	}
}

func (s *status) starting() {
	_, _ = s.banner.Fprintln(s.w, "start_tor")
}

func (s *status) remaining(d time.Duration) {
	if d < 0 {
		d = 0
	}
	_, _ = s.countdown.Fprintf(s.w, "\rwaiting for Tor: %.1fs remaining", d.Seconds())
}

func (s *status) ready(found int) {
	// End the countdown line first.
	_, _ = fmt.Fprintln(s.w)
	_, _ = s.success.Fprintf(s.w, "Tor is ready (%d window(s) minimized)\n", found)
}
