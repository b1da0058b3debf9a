package driver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/netraptor/internal/adapters/system/systemtest"
	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
)

const (
	managedOut = "wlan0     IEEE 802.11  ESSID:off/any\n          Mode:Managed  Access Point: Not-Associated\n"
	monitorOut = "wlan0     IEEE 802.11  Mode:Monitor  Frequency:2.437 GHz\n"
)

type fakeKiller struct {
	mu    sync.Mutex
	names []string
}

func (k *fakeKiller) KillByName(_ context.Context, names ...string) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.names = append(k.names, names...)
	return len(names)
}

// radio simulates an adapter whose mode flips once the n-th
// "iwconfig <iface> mode monitor" call is made.
type radio struct {
	mu        sync.Mutex
	monitorOn map[string]bool
	flipAfter int
	modeSets  int
}

func newRadio(flipAfter int) *radio {
	return &radio{monitorOn: map[string]bool{}, flipAfter: flipAfter}
}

func (r *radio) handle(c ports.Command) (ports.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	line := systemtest.Line(c)

	switch {
	case c.Name == "iwconfig" && len(c.Args) == 3 && c.Args[1] == "mode" && c.Args[2] == "monitor":
		r.modeSets++
		if r.flipAfter > 0 && r.modeSets >= r.flipAfter {
			r.monitorOn[c.Args[0]] = true
		}
		return ports.Result{}, nil
	case c.Name == "iwconfig" && len(c.Args) == 1:
		if r.monitorOn[c.Args[0]] {
			return ports.Result{Stdout: monitorOut}, nil
		}
		if c.Args[0] == "wlan0" {
			return ports.Result{Stdout: managedOut}, nil
		}
		return ports.Result{Stderr: c.Args[0] + "  No such device", ExitCode: 1}, nil
	case strings.HasPrefix(line, "iw dev"):
		return ports.Result{Stderr: "No such device (-19)", ExitCode: 237}, nil
	}
	return ports.Result{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestController(runner *systemtest.FakeRunner, killer ProcessKiller) *Controller {
	return NewController(runner, killer, Tools{}, testLogger())
}

func TestQueryMode(t *testing.T) {
	runner := systemtest.NewFakeRunner().On("iwconfig wlan0", ports.Result{Stdout: managedOut}, nil)
	c := newTestController(runner, nil)
	assert.Equal(t, domain.ModeManaged, c.QueryMode(context.Background(), "wlan0"))
}

func TestQueryMode_FallsBackToIw(t *testing.T) {
	runner := systemtest.NewFakeRunner().
		On("iwconfig", ports.Result{}, errors.New("exec: not found")).
		On("iw dev wlan1 info", ports.Result{Stdout: "Interface wlan1\n\tifindex 4\n\ttype monitor\n"}, nil)
	c := newTestController(runner, nil)
	assert.Equal(t, domain.ModeMonitor, c.QueryMode(context.Background(), "wlan1"))
}

func TestQueryMode_UnknownIsNotAnError(t *testing.T) {
	c := newTestController(systemtest.NewFakeRunner(), nil)
	assert.Equal(t, domain.ModeUnknown, c.QueryMode(context.Background(), "wlan9"))
}

func TestEnterMonitorMode_Airmon(t *testing.T) {
	r := newRadio(0)
	r.monitorOn["wlan0mon"] = true
	runner := systemtest.NewFakeRunner().
		On("airmon-ng start wlan0", ports.Result{Stdout: "\t\t(mac80211 monitor mode vif enabled for [phy0]wlan0 on [phy0]wlan0mon)\n"}, nil)
	runner.OnRun = r.handle

	c := newTestController(runner, &fakeKiller{})
	active, degraded := c.EnterMonitorMode(context.Background(), "wlan0")

	assert.Equal(t, "wlan0mon", active)
	assert.False(t, degraded)

	lines := runner.CommandLines()
	assert.Contains(t, lines, "systemctl stop NetworkManager")
	assert.Contains(t, lines, "service wpa_supplicant stop")
	assert.Contains(t, lines, "airmon-ng check kill")
	assert.Contains(t, lines, "ip link set wlan0 down")
	assert.NotContains(t, lines, "iwconfig wlan0 mode monitor", "later strategies never run")
}

func TestEnterMonitorMode_ManualAfterAirmonFails(t *testing.T) {
	r := newRadio(1)
	runner := systemtest.NewFakeRunner()
	runner.OnRun = r.handle
	killer := &fakeKiller{}

	c := newTestController(runner, killer)
	active, degraded := c.EnterMonitorMode(context.Background(), "wlan0")

	assert.Equal(t, "wlan0", active)
	assert.False(t, degraded)
	assert.Equal(t, interferingProcesses, killer.names)
	assert.Contains(t, runner.CommandLines(), "ip link set wlan0 up")
}

func TestEnterMonitorMode_Direct(t *testing.T) {
	r := newRadio(2)
	runner := systemtest.NewFakeRunner()
	runner.OnRun = r.handle

	c := newTestController(runner, &fakeKiller{})
	active, degraded := c.EnterMonitorMode(context.Background(), "wlan0")

	assert.Equal(t, "wlan0", active)
	assert.False(t, degraded)
	assert.Equal(t, 2, r.modeSets)
}

func TestEnterMonitorMode_AllFail(t *testing.T) {
	r := newRadio(0)
	runner := systemtest.NewFakeRunner()
	runner.OnRun = r.handle

	c := newTestController(runner, &fakeKiller{})
	var active string
	var degraded bool
	require.NotPanics(t, func() {
		active, degraded = c.EnterMonitorMode(context.Background(), "wlan0")
	})
	assert.Equal(t, "wlan0", active)
	assert.True(t, degraded)
}

func TestEnterMonitorMode_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := systemtest.NewFakeRunner()
	c := newTestController(runner, nil)
	active, degraded := c.EnterMonitorMode(ctx, "wlan0")

	assert.Equal(t, "wlan0", active)
	assert.True(t, degraded)
	assert.Empty(t, runner.Calls())
}

func TestRestoreMode(t *testing.T) {
	runner := systemtest.NewFakeRunner()
	c := newTestController(runner, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // teardown usually runs after an interrupt

	c.RestoreMode(ctx, domain.AdapterState{
		Name: "wlan0", Active: "wlan0mon", OriginalMode: domain.ModeManaged, Negotiated: true,
	})

	lines := runner.CommandLines()
	assert.Contains(t, lines, "airmon-ng stop wlan0mon")
	assert.Contains(t, lines, "iwconfig wlan0 mode managed")
	assert.Contains(t, lines, "ip link set wlan0 up")
	assert.Contains(t, lines, "systemctl start NetworkManager")
	assert.Contains(t, lines, "service network-manager start")
}

func TestRestoreMode_UnknownOriginalBecomesManaged(t *testing.T) {
	runner := systemtest.NewFakeRunner()
	c := newTestController(runner, nil)

	c.RestoreMode(context.Background(), domain.AdapterState{Name: "wlan0", OriginalMode: domain.ModeUnknown})

	lines := runner.CommandLines()
	assert.Contains(t, lines, "iwconfig wlan0 mode managed")
	for _, l := range lines {
		assert.False(t, strings.HasPrefix(l, "airmon-ng stop"), "no virtual interface to remove")
	}
}

func TestSetChannel(t *testing.T) {
	runner := systemtest.NewFakeRunner().
		On("iwconfig wlan0 channel 6", ports.Result{ExitCode: 1, Stderr: "SET failed"}, nil)
	c := newTestController(runner, nil)

	require.NoError(t, c.SetChannel(context.Background(), "wlan0", 6))
	assert.Contains(t, runner.CommandLines(), "iw wlan0 set channel 6")

	assert.ErrorIs(t, c.SetChannel(context.Background(), "wlan0", 0), domain.ErrChannelRequired)
}

func TestSetChannel_BothFail(t *testing.T) {
	runner := systemtest.NewFakeRunner().
		On("iwconfig", ports.Result{ExitCode: 1}, nil).
		On("iw", ports.Result{ExitCode: 1, Stderr: "Invalid argument"}, nil)
	c := newTestController(runner, nil)
	err := c.SetChannel(context.Background(), "wlan0", 165)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid argument")
}

func TestParseAirmonInterface(t *testing.T) {
	assert.Equal(t, "wlan0mon", parseAirmonInterface("(mac80211 monitor mode vif enabled for [phy0]wlan0 on [phy0]wlan0mon)"))
	assert.Equal(t, "mon0", parseAirmonInterface("(monitor mode enabled on mon0)"))
	assert.Equal(t, "", parseAirmonInterface("nothing here"))
}

func TestMonitorCandidates(t *testing.T) {
	assert.Equal(t,
		[]string{"wlan0mon", "wlan0_mon", "mon0", "wlanmon", "wlan0"},
		monitorCandidates("wlan0", ""))
	assert.Equal(t,
		[]string{"custom", "wlan0mon", "wlan0_mon", "mon0", "wlanmon", "wlan0"},
		monitorCandidates("wlan0", "custom"))
}
