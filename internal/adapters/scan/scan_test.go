package scan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
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
	temps  []string
	active []ports.Process
	events []domain.ProgressEvent
}

func (r *recorder) TrackTemp(paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.temps = append(r.temps, paths...)
}

func (r *recorder) SetActive(p ports.Process) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = append(r.active, p)
}

func (r *recorder) ClearActive(ports.Process) {}

func (r *recorder) Report(ev domain.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

type fixedMode domain.Mode

func (m fixedMode) QueryMode(context.Context, string) domain.Mode { return domain.Mode(m) }

type stubBackend struct {
	kind    domain.Backend
	records map[string]domain.NetworkRecord
	calls   int
}

func (s *stubBackend) Kind() domain.Backend { return s.kind }

func (s *stubBackend) Scan(context.Context, string, time.Duration) (map[string]domain.NetworkRecord, error) {
	s.calls++
	return s.records, nil
}

const dumpCSV = "BSSID, First time seen, Last time seen, channel, Speed, Privacy, Cipher, Authentication, Power, # beacons, # IV, LAN IP, ID-length, ESSID, Key\r\n" +
	"AA:BB:CC:DD:EE:01, 2026-01-02 10:00:00, 2026-01-02 10:00:30,  6,  54, WPA2, CCMP, PSK, -45,  12,  3,   0.  0.  0.   0,   7, CorpNet, \r\n" +
	"\r\n"

const iwlistCell = `wlan0     Scan completed :
          Cell 01 - Address: AA:BB:CC:DD:EE:0%s
                    Channel:%s
                    Frequency:2.437 GHz (Channel 6)
                    Quality=50/70  Signal level=%s dBm
                    Encryption key:off
                    ESSID:"Net%s"
`

func cell(suffix, channel, signal string) string {
	return fmt.Sprintf(iwlistCell, suffix, channel, signal, suffix)
}

func TestSelector_Select(t *testing.T) {
	mon := &stubBackend{kind: domain.BackendMonitor}
	man := &stubBackend{kind: domain.BackendManaged}

	s := NewSelector(fixedMode(domain.ModeMonitor), mon, man)
	assert.Same(t, mon, s.Select(domain.ModeMonitor))
	assert.Same(t, man, s.Select(domain.ModeManaged))
	assert.Same(t, man, s.Select(domain.ModeUnknown))

	s.MonitorAvailable = false
	assert.Same(t, man, s.Select(domain.ModeMonitor))
}

func TestSelector_ScanUsesCurrentMode(t *testing.T) {
	mon := &stubBackend{kind: domain.BackendMonitor, records: map[string]domain.NetworkRecord{"AA:BB:CC:DD:EE:01": {}}}
	man := &stubBackend{kind: domain.BackendManaged}

	got, kind, err := NewSelector(fixedMode(domain.ModeMonitor), mon, man).Scan(context.Background(), "wlan0mon", time.Second)
	require.NoError(t, err)
	assert.Equal(t, domain.BackendMonitor, kind)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, mon.calls)
	assert.Zero(t, man.calls)
}

func TestMonitorDriver_Scan(t *testing.T) {
	dir := t.TempDir()
	runner := systemtest.NewFakeRunner()
	runner.OnStart = func(c ports.Command) (*systemtest.FakeProcess, error) {
		prefix := c.Args[1]
		require.NoError(t, os.WriteFile(prefix+"-01.csv", []byte(dumpCSV), 0o600))
		return systemtest.NewFakeProcess(false), nil
	}
	rec := &recorder{}

	d := NewMonitorDriver(runner, rec, rec, discard)
	d.TempDir = dir
	d.Tick = 10 * time.Millisecond

	got, err := d.Scan(context.Background(), "wlan0mon", 60*time.Millisecond)
	require.NoError(t, err)
	require.Contains(t, got, "AA:BB:CC:DD:EE:01")
	assert.Equal(t, "CorpNet", got["AA:BB:CC:DD:EE:01"].ESSID)

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "airodump-ng", calls[0].Name)
	assert.Equal(t, []string{"--output-format", "csv", "wlan0mon"}, calls[0].Args[2:])

	procs := runner.Processes()
	require.Len(t, procs, 1)
	assert.True(t, procs[0].Terminated())

	require.Len(t, rec.temps, 2)
	assert.True(t, strings.HasSuffix(rec.temps[0], "-01.csv"))
	assert.True(t, strings.HasPrefix(rec.temps[0], dir))
	assert.Len(t, rec.active, 1)
	assert.NotEmpty(t, rec.events, "elapsed progress is reported while capturing")
}

func TestMonitorDriver_MissingDumpYieldsEmpty(t *testing.T) {
	rec := &recorder{}
	d := NewMonitorDriver(systemtest.NewFakeRunner(), rec, rec, discard)
	d.TempDir = t.TempDir()

	got, err := d.Scan(context.Background(), "wlan0mon", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMonitorDriver_Interrupted(t *testing.T) {
	rec := &recorder{}
	runner := systemtest.NewFakeRunner()
	d := NewMonitorDriver(runner, rec, rec, discard)
	d.TempDir = t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	got, err := d.Scan(ctx, "wlan0mon", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, got)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, runner.Processes()[0].Terminated())
}

func TestRepetitions(t *testing.T) {
	assert.Equal(t, 1, Repetitions(5*time.Second))
	assert.Equal(t, 1, Repetitions(10*time.Second))
	assert.Equal(t, 3, Repetitions(30*time.Second))
	assert.Equal(t, 1, Repetitions(0))
}

func TestManagedDriver_ReconcilesRepetitions(t *testing.T) {
	runner := systemtest.NewFakeRunner()
	outputs := []string{
		cell("1", "6", "-70"),
		"iwlist: device busy",
		cell("1", "6", "-40") + strings.Replace(cell("2", "11", "-80"), "wlan0     Scan completed :\n", "", 1),
	}
	var n int
	runner.OnRun = func(c ports.Command) (ports.Result, error) {
		out := outputs[n]
		n++
		if strings.Contains(out, "busy") {
			return ports.Result{Stderr: out, ExitCode: 1}, nil
		}
		return ports.Result{Stdout: out}, nil
	}
	rec := &recorder{}

	d := NewManagedDriver(runner, rec, discard)
	d.Pause = 0

	got, err := d.Scan(context.Background(), "wlan0", 30*time.Second)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.SignalOf(-40), got["AA:BB:CC:DD:EE:01"].Power, "strongest reading wins")
	assert.Equal(t, "Net2", got["AA:BB:CC:DD:EE:02"].ESSID)

	for _, c := range runner.Calls() {
		assert.Equal(t, "iwlist wlan0 scan", systemtest.Line(c))
		assert.Equal(t, iwlistTimeout, c.Timeout)
	}
	assert.Len(t, runner.Calls(), 3)
	assert.Len(t, rec.events, 3)
}

func TestManagedDriver_PausesAfterFailedRepetition(t *testing.T) {
	runner := systemtest.NewFakeRunner()
	var (
		mu    sync.Mutex
		times []time.Time
	)
	runner.OnRun = func(c ports.Command) (ports.Result, error) {
		mu.Lock()
		defer mu.Unlock()
		times = append(times, time.Now())
		if len(times) == 1 {
			return ports.Result{Stderr: "iwlist: device busy", ExitCode: 1}, nil
		}
		return ports.Result{Stdout: cell("1", "6", "-50")}, nil
	}

	d := NewManagedDriver(runner, &recorder{}, discard)
	d.Pause = 150 * time.Millisecond

	got, err := d.Scan(context.Background(), "wlan0", 20*time.Second)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, times, 2)
	assert.GreaterOrEqual(t, times[1].Sub(times[0]), d.Pause, "failed repetition is followed by the pause")
}

func TestManagedDriver_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := systemtest.NewFakeRunner()
	got, err := NewManagedDriver(runner, &recorder{}, discard).Scan(ctx, "wlan0", 30*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, got)
	assert.Empty(t, runner.Calls())
}

const washOutput = `BSSID               Ch  dBm  WPS  Lck  Vendor    ESSID
--------------------------------------------------------------------------------
AA:BB:CC:DD:EE:01    6  -45  2.0  No   RalinkTe  CorpNet
AA:BB:CC:DD:EE:02   11  -70  1.0  Yes  Broadcom  Home Net
`

func TestWashScanner_PartialOutputOnTimeout(t *testing.T) {
	runner := systemtest.NewFakeRunner().
		On("wash -i wlan0mon -C", ports.Result{Stdout: washOutput}, domain.ErrTimeout)

	got, err := NewWashScanner(runner, discard).ScanWPS(context.Background(), "wlan0mon", 30*time.Second)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Home Net", got[1].ESSID)
	assert.True(t, got[1].Locked)
	assert.Equal(t, 30*time.Second, runner.Calls()[0].Timeout)
}

func TestWashScanner_ToolMissing(t *testing.T) {
	runner := systemtest.NewFakeRunner().On("wash", ports.Result{}, domain.ErrToolMissing)

	_, err := NewWashScanner(runner, discard).ScanWPS(context.Background(), "wlan0mon", time.Second)
	assert.ErrorIs(t, err, domain.ErrToolMissing)
}

func TestHcitoolScanner(t *testing.T) {
	runner := systemtest.NewFakeRunner().
		On("hciconfig", ports.Result{ExitCode: 1}, nil).
		On("hcitool scan", ports.Result{Stdout: "Scanning ...\n\t00:11:22:33:44:55\tHeadset\n\t66:77:88:99:AA:BB\tn/a\n"}, nil)

	got, err := NewHcitoolScanner(runner, discard).ScanBluetooth(context.Background(), 30*time.Second)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Headset", got[0].Name)

	assert.Equal(t, []string{
		"systemctl start bluetooth",
		"hciconfig hci0 up",
		"hcitool scan --length 7",
	}, runner.CommandLines())
}
