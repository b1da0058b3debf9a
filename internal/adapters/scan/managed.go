package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lcalzada-xor/netraptor/internal/adapters/parser"
	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
	"github.com/lcalzada-xor/netraptor/internal/core/services/inventory"
)

const (
	iwlistTimeout = 15 * time.Second
	iwlistPause   = 2 * time.Second
	secondsPerRun = 10
)

// ManagedDriver repeats `iwlist <if> scan` and reconciles the repetitions.
type ManagedDriver struct {
	runner   ports.CommandRunner
	progress ports.ProgressReporter
	logger   *slog.Logger

	Iwlist string
	Pause  time.Duration
	now    func() time.Time
}

var _ ports.ScanBackend = (*ManagedDriver)(nil)

func NewManagedDriver(runner ports.CommandRunner, progress ports.ProgressReporter, logger *slog.Logger) *ManagedDriver {
	return &ManagedDriver{
		runner:   runner,
		progress: progress,
		logger:   logger.With("backend", domain.BackendManaged),
		Iwlist:   "iwlist",
		Pause:    iwlistPause,
		now:      time.Now,
	}
}

func (d *ManagedDriver) Kind() domain.Backend { return domain.BackendManaged }

// Repetitions is the number of discrete scans for a window: one per ten
// seconds, at least one.
func Repetitions(duration time.Duration) int {
	n := int(duration/time.Second) / secondsPerRun
	if n < 1 {
		return 1
	}
	return n
}

// Scan runs the repetitions. A failing repetition is logged and skipped.
func (d *ManagedDriver) Scan(ctx context.Context, iface string, duration time.Duration) (map[string]domain.NetworkRecord, error) {
	count := Repetitions(duration)
	start := d.now()
	scans := make([]map[string]domain.NetworkRecord, 0, count)

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return inventory.Reconcile(scans...), err
		}
		d.progress.Report(domain.ProgressEvent{
			Operation: "scan",
			Message:   fmt.Sprintf("scan %d/%d", i+1, count),
			Elapsed:   d.now().Sub(start),
			Total:     duration,
			Timestamp: d.now(),
		})

		res, err := d.runner.Run(ctx, ports.Command{Name: d.Iwlist, Args: []string{iface, "scan"}, Timeout: iwlistTimeout})
		switch {
		case ctx.Err() != nil:
			return inventory.Reconcile(scans...), ctx.Err()
		case errors.Is(err, domain.ErrTimeout):
			d.logger.Warn("iwlist timed out", "repetition", i+1)
			scans = append(scans, parser.ParseIwlist(res.Stdout, d.now()))
		case err != nil:
			d.logger.Warn("iwlist failed", "repetition", i+1, "error", err)
		case !res.Success():
			d.logger.Warn("iwlist exited non-zero", "repetition", i+1, "output", res.Combined())
		default:
			scans = append(scans, parser.ParseIwlist(res.Stdout, d.now()))
		}

		// Pause after every repetition but the last, failed ones included.
		if i < count-1 {
			if err := sleepCtx(ctx, d.Pause); err != nil {
				return inventory.Reconcile(scans...), err
			}
		}
	}

	merged := inventory.Reconcile(scans...)
	d.logger.Info("managed scan finished", "iface", iface, "repetitions", count, "networks", len(merged))
	return merged, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
