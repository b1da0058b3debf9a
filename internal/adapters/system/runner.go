package system

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
	"github.com/lcalzada-xor/netraptor/internal/telemetry"
)

// execCmd allows mocking exec.CommandContext in tests
var execCmd = exec.CommandContext

// killGrace is how long a terminated process group gets before SIGKILL.
var killGrace = 2 * time.Second

// ExecRunner runs external tools with os/exec. Every child is placed in its
// own process group so that termination reaches the tools it spawns.
type ExecRunner struct{}

// NewExecRunner returns a runner backed by the host.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

var _ ports.CommandRunner = (*ExecRunner)(nil)

// LookPath resolves a tool in $PATH.
func (r *ExecRunner) LookPath(name string) (string, error) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrToolMissing, name)
	}
	return p, nil
}

// Run executes c to completion and collects its output.
func (r *ExecRunner) Run(ctx context.Context, c ports.Command) (ports.Result, error) {
	runCtx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := execCmd(runCtx, c.Name, c.Args...)
	prepare(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := ports.Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		telemetry.SubprocessTimeouts.WithLabelValues(c.Name).Inc()
		return res, fmt.Errorf("%s after %s: %w", c.Name, c.Timeout, domain.ErrTimeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		if errors.Is(err, exec.ErrNotFound) {
			return res, fmt.Errorf("%w: %s", domain.ErrToolMissing, c.Name)
		}
		return res, fmt.Errorf("run %s: %w", c.Name, err)
	}
	return res, nil
}

// Start launches c and returns immediately. The process is bound to ctx and
// to c.Timeout when set.
func (r *ExecRunner) Start(ctx context.Context, c ports.Command) (ports.Process, error) {
	runCtx, cancel := withTimeout(ctx, c.Timeout)

	cmd := execCmd(runCtx, c.Name, c.Args...)
	prepare(cmd)

	p, err := startProcess(cmd, c, cancel)
	if err != nil {
		cancel()
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrToolMissing, c.Name)
		}
		return nil, fmt.Errorf("start %s: %w", c.Name, err)
	}
	return p, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// prepare isolates the child in a new process group and makes context
// cancellation kill the whole group.
func prepare(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return killGroup(cmd, syscall.SIGKILL)
	}
	cmd.WaitDelay = killGrace
}

func killGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd.Process == nil || cmd.Process.Pid <= 0 {
		return nil
	}
	err := syscall.Kill(-cmd.Process.Pid, sig)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}
