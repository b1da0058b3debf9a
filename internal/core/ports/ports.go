package ports

import (
	"context"
	"time"
)

// Command describes one invocation of an external tool.
type Command struct {
	Name string
	Args []string

	// Timeout bounds the run. Zero means only the context applies.
	Timeout time.Duration

	// CaptureOutput asks Start to stream combined output lines.
	CaptureOutput bool
}

// Result holds what a finished command printed.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Combined returns stdout followed by stderr.
func (r Result) Combined() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// Success reports a zero exit status.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Process is a running subprocess started with CommandRunner.Start.
type Process interface {
	// Lines yields combined output lines and is closed when output ends.
	// It is nil when the command was started without CaptureOutput.
	Lines() <-chan string

	// Terminate stops the process and its children. Safe to call repeatedly.
	Terminate() error

	// Done is closed once the process has exited and been reaped.
	Done() <-chan struct{}
}

// CommandRunner executes external tools.
//
// Run returns a nil error for non-zero exits and reports them via
// Result.ExitCode. A command that outlives its Timeout is killed and Run
// returns the partial Result together with an error wrapping domain.ErrTimeout.
// A cancelled context yields ctx.Err().
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
	Start(ctx context.Context, cmd Command) (Process, error)
	LookPath(name string) (string, error)
}
