package scan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/lcalzada-xor/netraptor/internal/adapters/parser"
	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
)

// MonitorDriver captures with airodump-ng for the whole scan window and
// parses the CSV dump it leaves behind.
type MonitorDriver struct {
	runner   ports.CommandRunner
	tracker  ports.ResourceTracker
	progress ports.ProgressReporter
	logger   *slog.Logger

	Airodump string
	TempDir  string
	Tick     time.Duration
	now      func() time.Time
}

var _ ports.ScanBackend = (*MonitorDriver)(nil)

func NewMonitorDriver(runner ports.CommandRunner, tracker ports.ResourceTracker, progress ports.ProgressReporter, logger *slog.Logger) *MonitorDriver {
	return &MonitorDriver{
		runner:   runner,
		tracker:  tracker,
		progress: progress,
		logger:   logger.With("backend", domain.BackendMonitor),
		Airodump: "airodump-ng",
		TempDir:  os.TempDir(),
		Tick:     time.Second,
		now:      time.Now,
	}
}

func (d *MonitorDriver) Kind() domain.Backend { return domain.BackendMonitor }

// Scan runs the capture for duration. An interrupted scan still parses
// whatever was dumped and returns it alongside the context error.
func (d *MonitorDriver) Scan(ctx context.Context, iface string, duration time.Duration) (map[string]domain.NetworkRecord, error) {
	prefix := filepath.Join(d.TempDir, "netraptor-"+uuid.New().String())
	csvFile := prefix + "-01.csv"
	d.tracker.TrackTemp(csvFile, prefix+"-01.cap")

	proc, err := d.runner.Start(ctx, ports.Command{
		Name: d.Airodump,
		Args: []string{"-w", prefix, "--output-format", "csv", iface},
	})
	if err != nil {
		return map[string]domain.NetworkRecord{}, fmt.Errorf("start capture: %w", err)
	}
	d.tracker.SetActive(proc)
	defer d.tracker.ClearActive(proc)

	waitErr := d.wait(ctx, proc, duration)
	if err := proc.Terminate(); err != nil {
		d.logger.Warn("failed to stop capture", "error", err)
	}

	records, err := parser.ParseAirodumpFile(csvFile, d.now())
	if err != nil {
		d.logger.Warn("could not parse capture dump", "file", csvFile, "error", err)
	}
	d.logger.Info("monitor scan finished", "iface", iface, "networks", len(records))
	return records, waitErr
}

// wait emits elapsed progress until the window closes, the tool exits or
// ctx is cancelled.
func (d *MonitorDriver) wait(ctx context.Context, proc ports.Process, duration time.Duration) error {
	start := d.now()
	ticker := time.NewTicker(d.Tick)
	defer ticker.Stop()
	deadline := time.NewTimer(duration)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-proc.Done():
			d.logger.Warn("capture tool exited early")
			return nil
		case <-deadline.C:
			return nil
		case <-ticker.C:
			d.progress.Report(domain.ProgressEvent{
				Operation: "scan",
				Message:   "capturing",
				Elapsed:   d.now().Sub(start),
				Total:     duration,
				Timestamp: d.now(),
			})
		}
	}
}
