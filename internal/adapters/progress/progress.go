// Package progress renders advisory progress events.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
)

// Console prints progress to a terminal. On a TTY the current line is
// rewritten in place; elsewhere each event gets its own line.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	tty   bool
	label *color.Color
	open  bool
}

var _ ports.ProgressReporter = (*Console)(nil)

// NewConsole writes to f, detecting whether it is a terminal.
func NewConsole(f *os.File) *Console {
	tty := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	return newConsole(f, tty)
}

func newConsole(w io.Writer, tty bool) *Console {
	label := color.New(color.FgCyan, color.Bold)
	if !tty {
		label.DisableColor()
	}
	return &Console{w: w, tty: tty, label: label}
}

func (c *Console) Report(ev domain.ProgressEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := fmt.Sprintf("%s %s", c.label.Sprintf("[%s]", ev.Operation), ev.Message)
	if ev.Total > 0 {
		line += fmt.Sprintf(" %s/%s (%3.0f%%)", ev.Elapsed.Truncate(time.Second), ev.Total, ev.Fraction()*100)
	}

	if c.tty {
		fmt.Fprintf(c.w, "\r\033[K%s", line)
		c.open = true
		return
	}
	fmt.Fprintln(c.w, line)
}

// Done terminates a line left open by in-place updates.
func (c *Console) Done() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		fmt.Fprintln(c.w)
		c.open = false
	}
}

// Multi fans events out to several reporters.
type Multi []ports.ProgressReporter

func (m Multi) Report(ev domain.ProgressEvent) {
	for _, r := range m {
		if r != nil {
			r.Report(ev)
		}
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Report(domain.ProgressEvent) {}
