package system

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	psnet "github.com/shirou/gopsutil/v3/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/netraptor/internal/adapters/system/systemtest"
	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireRoot(t *testing.T) {
	orig := geteuid
	t.Cleanup(func() { geteuid = orig })

	geteuid = func() int { return 1000 }
	assert.ErrorIs(t, RequireRoot(), domain.ErrNotRoot)

	geteuid = func() int { return 0 }
	assert.NoError(t, RequireRoot())
}

func TestProbeTools(t *testing.T) {
	runner := systemtest.NewFakeRunner().Missing("wash", "hcxdumptool")

	inv := ProbeTools(runner, nil, discardLogger())
	assert.True(t, inv.Has(domain.PkgAircrack))
	assert.False(t, inv.Has(domain.PkgReaver), "reaver needs wash too")
	assert.True(t, inv.Has(domain.PkgBluetooth))
	assert.False(t, inv.Has(domain.PkgHcxtools))
}

func TestProbeTools_ConfiguredPaths(t *testing.T) {
	runner := systemtest.NewFakeRunner().Missing("reaver", "wash")

	inv := ProbeTools(runner, map[string]string{"reaver": "/opt/reaver/reaver", "wash": "/opt/reaver/wash"}, discardLogger())
	assert.True(t, inv.Has(domain.PkgReaver))

	inv = ProbeTools(runner, map[string]string{"reaver": "/opt/reaver/reaver"}, discardLogger())
	assert.False(t, inv.Has(domain.PkgReaver), "wash still resolves to the missing default")
}

type fakeProc struct {
	name   string
	killed bool
	err    error
}

func (p *fakeProc) NameWithContext(context.Context) (string, error) { return p.name, nil }
func (p *fakeProc) KillWithContext(context.Context) error {
	if p.err != nil {
		return p.err
	}
	p.killed = true
	return nil
}

func TestProcessKiller_KillByName(t *testing.T) {
	supplicant := &fakeProc{name: "wpa_supplicant"}
	dhclient := &fakeProc{name: "dhclient", err: errors.New("permission denied")}
	shell := &fakeProc{name: "bash"}

	orig := listProcesses
	listProcesses = func(context.Context) ([]proc, error) {
		return []proc{supplicant, dhclient, shell}, nil
	}
	t.Cleanup(func() { listProcesses = orig })

	k := NewProcessKiller(discardLogger())
	n := k.KillByName(context.Background(), "wpa_supplicant", "dhclient", "NetworkManager")

	assert.Equal(t, 1, n)
	assert.True(t, supplicant.killed)
	assert.False(t, shell.killed)
}

func TestDiscoverWireless_Iwconfig(t *testing.T) {
	runner := systemtest.NewFakeRunner().
		On("iwconfig", ports.Result{Stdout: "wlan0     IEEE 802.11  ESSID:off/any\n          Mode:Managed\n\nlo        no wireless extensions.\nwlan0     IEEE 802.11\n"}, nil)

	got := DiscoverWireless(context.Background(), runner, discardLogger())
	assert.Equal(t, []string{"wlan0"}, got)
}

func TestDiscoverWireless_FallsBackToIwDev(t *testing.T) {
	runner := systemtest.NewFakeRunner().
		On("iw dev", ports.Result{Stdout: "phy#0\n\tInterface wlp2s0\n\t\tifindex 3\n"}, nil)

	got := DiscoverWireless(context.Background(), runner, discardLogger())
	assert.Equal(t, []string{"wlp2s0"}, got)
}

func TestDiscoverWireless_Sysfs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "wlan1", "wireless"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "eth0"), 0o755))

	orig := sysWirelessGlob
	sysWirelessGlob = filepath.Join(dir, "*", "wireless")
	t.Cleanup(func() { sysWirelessGlob = orig })

	got := DiscoverWireless(context.Background(), systemtest.NewFakeRunner(), discardLogger())
	assert.Equal(t, []string{"wlan1"}, got)
}

func TestDiscoverWireless_KernelNames(t *testing.T) {
	origGlob, origNet := sysWirelessGlob, netInterfaces
	sysWirelessGlob = filepath.Join(t.TempDir(), "*", "wireless")
	netInterfaces = func(context.Context) (psnet.InterfaceStatList, error) {
		return psnet.InterfaceStatList{{Name: "lo"}, {Name: "wlx00c0ca"}, {Name: "eth0"}}, nil
	}
	t.Cleanup(func() { sysWirelessGlob, netInterfaces = origGlob, origNet })

	got := DiscoverWireless(context.Background(), systemtest.NewFakeRunner(), discardLogger())
	assert.Equal(t, []string{"wlx00c0ca"}, got)
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"wlan0", "wlan1"}, dedupe([]string{"wlan0", "wl", "wlan0", "", "wlan1"}))
}
