// Package systemtest provides scripted stand-ins for ports.CommandRunner.
package systemtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
)

type response struct {
	prefix string
	result ports.Result
	err    error
}

// FakeRunner records every command and answers Run from registered
// responses. The longest matching command-line prefix wins; unmatched
// commands succeed with empty output.
type FakeRunner struct {
	mu        sync.Mutex
	responses []response
	missing   map[string]bool
	calls     []ports.Command
	procs     []*FakeProcess

	// OnRun, when set, handles commands no response matched.
	OnRun func(c ports.Command) (ports.Result, error)

	// OnStart builds the process for Start. The default is a capturing
	// process that stays alive until terminated.
	OnStart func(c ports.Command) (*FakeProcess, error)
}

func NewFakeRunner() *FakeRunner {
	return &FakeRunner{missing: make(map[string]bool)}
}

var _ ports.CommandRunner = (*FakeRunner)(nil)

// On registers the result for commands whose line starts with prefix.
func (f *FakeRunner) On(prefix string, res ports.Result, err error) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, response{prefix: prefix, result: res, err: err})
	return f
}

// Missing marks tools that LookPath will fail to resolve.
func (f *FakeRunner) Missing(names ...string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		f.missing[n] = true
	}
	return f
}

func (f *FakeRunner) Run(ctx context.Context, c ports.Command) (ports.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	line := Line(c)
	var best *response
	for i := range f.responses {
		r := &f.responses[i]
		if strings.HasPrefix(line, r.prefix) && (best == nil || len(r.prefix) > len(best.prefix)) {
			best = r
		}
	}
	onRun := f.OnRun
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return ports.Result{}, err
	}
	if best != nil {
		return best.result, best.err
	}
	if onRun != nil {
		return onRun(c)
	}
	return ports.Result{}, nil
}

func (f *FakeRunner) Start(ctx context.Context, c ports.Command) (ports.Process, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	onStart := f.OnStart
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var p *FakeProcess
	if onStart != nil {
		var err error
		if p, err = onStart(c); err != nil {
			return nil, err
		}
	} else {
		p = NewFakeProcess(c.CaptureOutput)
	}

	f.mu.Lock()
	f.procs = append(f.procs, p)
	f.mu.Unlock()
	return p, nil
}

func (f *FakeRunner) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[name] {
		return "", fmt.Errorf("%w: %s", domain.ErrToolMissing, name)
	}
	return "/usr/bin/" + name, nil
}

// Calls returns the commands seen so far, in order.
func (f *FakeRunner) Calls() []ports.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.Command(nil), f.calls...)
}

// CommandLines returns Calls rendered as space-joined command lines.
func (f *FakeRunner) CommandLines() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = Line(c)
	}
	return out
}

// Processes returns the processes handed out by Start.
func (f *FakeRunner) Processes() []*FakeProcess {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeProcess(nil), f.procs...)
}

// Line renders a command as it would be typed.
func Line(c ports.Command) string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// FakeProcess is a controllable ports.Process.
type FakeProcess struct {
	mu         sync.Mutex
	lines      chan string
	done       chan struct{}
	exited     bool
	terminated bool
}

var _ ports.Process = (*FakeProcess)(nil)

// NewFakeProcess returns a live process. With capture set it exposes a
// buffered line channel.
func NewFakeProcess(capture bool) *FakeProcess {
	p := &FakeProcess{done: make(chan struct{})}
	if capture {
		p.lines = make(chan string, 1024)
	}
	return p
}

func (p *FakeProcess) Lines() <-chan string {
	if p.lines == nil {
		return nil
	}
	return p.lines
}

func (p *FakeProcess) Done() <-chan struct{} {
	return p.done
}

// Emit queues output lines. It is a no-op after exit.
func (p *FakeProcess) Emit(lines ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exited || p.lines == nil {
		return
	}
	for _, l := range lines {
		p.lines <- l
	}
}

// Exit simulates the process ending on its own.
func (p *FakeProcess) Exit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exited {
		return
	}
	p.exited = true
	if p.lines != nil {
		close(p.lines)
	}
	close(p.done)
}

func (p *FakeProcess) Terminate() error {
	p.mu.Lock()
	p.terminated = true
	p.mu.Unlock()
	p.Exit()
	return nil
}

// Terminated reports whether Terminate was called.
func (p *FakeProcess) Terminated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminated
}
