package system

import (
	"context"
	"log/slog"

	"github.com/shirou/gopsutil/v3/process"
)

// proc is the subset of *process.Process the killer needs.
type proc interface {
	NameWithContext(ctx context.Context) (string, error)
	KillWithContext(ctx context.Context) error
}

// listProcesses allows mocking the process table in tests
var listProcesses = func(ctx context.Context) ([]proc, error) {
	ps, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]proc, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out, nil
}

// ProcessKiller terminates processes by executable name.
type ProcessKiller struct {
	logger *slog.Logger
}

func NewProcessKiller(logger *slog.Logger) *ProcessKiller {
	return &ProcessKiller{logger: logger}
}

// KillByName sends SIGKILL to every process whose name is in names and
// returns how many were killed. Individual failures are logged only.
func (k *ProcessKiller) KillByName(ctx context.Context, names ...string) int {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}

	ps, err := listProcesses(ctx)
	if err != nil {
		k.logger.Warn("could not list processes", "error", err)
		return 0
	}

	killed := 0
	for _, p := range ps {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if _, ok := want[name]; !ok {
			continue
		}
		if err := p.KillWithContext(ctx); err != nil {
			k.logger.Debug("kill failed", "process", name, "error", err)
			continue
		}
		killed++
	}
	return killed
}
