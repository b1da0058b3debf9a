package wps

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/netraptor/internal/adapters/system/systemtest"
	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type recorder struct {
	mu     sync.Mutex
	active int
	events []domain.ProgressEvent
}

func (r *recorder) TrackTemp(...string) {}
func (r *recorder) SetActive(ports.Process) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active++
}
func (r *recorder) ClearActive(ports.Process) {}
func (r *recorder) Report(ev domain.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// scripted returns a runner whose reaver emits lines and then either exits
// or stays alive.
func scripted(exit bool, lines ...string) *systemtest.FakeRunner {
	runner := systemtest.NewFakeRunner()
	runner.OnStart = func(c ports.Command) (*systemtest.FakeProcess, error) {
		p := systemtest.NewFakeProcess(c.CaptureOutput)
		p.Emit(lines...)
		if exit {
			p.Exit()
		}
		return p, nil
	}
	return runner
}

func newEngine(t *testing.T, runner ports.CommandRunner) (*Engine, *recorder) {
	rec := &recorder{}
	e := NewEngine(runner, nil, rec, rec, discard)
	e.OutputDir = t.TempDir()
	e.PSKGrace = 50 * time.Millisecond
	return e, rec
}

func TestAttack_PINAndPassphrase(t *testing.T) {
	runner := scripted(false,
		`[+] Waiting for beacon from AA:BB:CC:DD:EE:FF`,
		`[+] Trying pin "12345670"`,
		`[+] WPS PIN: '12345670'`,
		`[+] WPA PSK: 'password'`,
	)
	e, rec := newEngine(t, runner)

	res, err := e.Attack(context.Background(), domain.WPSAttackConfig{
		TargetBSSID: "aa:bb:cc:dd:ee:ff", Interface: "wlan0mon", Channel: 6, ESSID: "IEEE",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonPINFound, res.Reason)
	assert.Equal(t, "12345670", res.PIN)
	assert.Equal(t, "password", res.Passphrase)
	assert.Equal(t, DerivePMK("password", "IEEE"), res.PMK)
	assert.Equal(t, "12345670", res.LastPIN)
	assert.Len(t, rec.events, 1)
	assert.Equal(t, 1, rec.active)
	assert.True(t, runner.Processes()[0].Terminated())

	call := runner.Calls()[0]
	assert.Equal(t, "reaver -i wlan0mon -b AA:BB:CC:DD:EE:FF -c 6 -vv -L -N -d 15 -T .5 -r 3:15", systemtest.Line(call))
	assert.True(t, call.CaptureOutput)

	data, err := os.ReadFile(res.Artifact)
	require.NoError(t, err)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", saved["bssid"])
	assert.Equal(t, "12345670", saved["pin"])
	assert.Equal(t, "password", saved["passphrase"])
	assert.Contains(t, saved, "timestamp")
	assert.Contains(t, saved, "duration")
	assert.Equal(t, res.PMK, saved["pmk"])
}

func TestAttack_PINWithoutPassphrasePersistsImmediately(t *testing.T) {
	e, _ := newEngine(t, scripted(false, `WPS PIN: 12345670`))

	res, err := e.Attack(context.Background(), domain.WPSAttackConfig{TargetBSSID: "AA:BB:CC:DD:EE:FF", Interface: "wlan0mon"})
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonPINFound, res.Reason)
	assert.Equal(t, "12345670", res.PIN)
	assert.Empty(t, res.PMK)
	assert.FileExists(t, res.Artifact)
}

func TestAttack_PINNotFound(t *testing.T) {
	runner := scripted(false, `[+] Trying pin "99999999"`, `[-] WPS pin not found!`)
	e, _ := newEngine(t, runner)

	res, err := e.Attack(context.Background(), domain.WPSAttackConfig{TargetBSSID: "AA:BB:CC:DD:EE:FF", Interface: "wlan0mon"})
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonPINNotFound, res.Reason)
	assert.False(t, res.Success())
	assert.Empty(t, res.Artifact)
	assert.True(t, runner.Processes()[0].Terminated())

	entries, err := os.ReadDir(e.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is persisted without a pin")
}

func TestAttack_CeilingWithoutTerminalMarker(t *testing.T) {
	runner := scripted(false, `[+] Trying pin "12345670"`, `[!] WARNING: Receive timeout occurred`)
	e, _ := newEngine(t, runner)

	start := time.Now()
	res, err := e.Attack(context.Background(), domain.WPSAttackConfig{
		TargetBSSID: "AA:BB:CC:DD:EE:FF", Interface: "wlan0mon", Ceiling: 100 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonTimeout, res.Reason)
	assert.False(t, res.Success())
	assert.Equal(t, "12345670", res.LastPIN)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, runner.Processes()[0].Terminated())
}

func TestAttack_Interrupted(t *testing.T) {
	runner := scripted(false)
	e, _ := newEngine(t, runner)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	res, err := e.Attack(ctx, domain.WPSAttackConfig{TargetBSSID: "AA:BB:CC:DD:EE:FF", Interface: "wlan0mon"})
	require.NoError(t, err, "interruption is not a fatal error")
	assert.Equal(t, domain.ReasonInterrupted, res.Reason)
	assert.True(t, runner.Processes()[0].Terminated())
}

func TestAttack_ProcessExited(t *testing.T) {
	e, _ := newEngine(t, scripted(true, `[+] Switching wlan0mon to channel 6`))

	res, err := e.Attack(context.Background(), domain.WPSAttackConfig{TargetBSSID: "AA:BB:CC:DD:EE:FF", Interface: "wlan0mon"})
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonProcessExited, res.Reason)
}

func TestAttack_StartFailed(t *testing.T) {
	runner := systemtest.NewFakeRunner()
	runner.OnStart = func(ports.Command) (*systemtest.FakeProcess, error) {
		return nil, domain.ErrToolMissing
	}
	e, _ := newEngine(t, runner)

	res, err := e.Attack(context.Background(), domain.WPSAttackConfig{TargetBSSID: "AA:BB:CC:DD:EE:FF", Interface: "wlan0mon"})
	assert.True(t, errors.Is(err, domain.ErrToolMissing))
	assert.Equal(t, domain.ReasonStartFailed, res.Reason)
}

func TestAttack_InvalidBSSID(t *testing.T) {
	runner := systemtest.NewFakeRunner()
	e, _ := newEngine(t, runner)

	_, err := e.Attack(context.Background(), domain.WPSAttackConfig{TargetBSSID: "zz"})
	assert.ErrorIs(t, err, domain.ErrInvalidBSSID)
	assert.Empty(t, runner.Calls())
}
