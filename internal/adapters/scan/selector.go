// Package scan runs network discovery through the backend matching the
// adapter's current mode.
package scan

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
	"github.com/lcalzada-xor/netraptor/internal/telemetry"
)

// ModeQuerier reports the adapter mode.
type ModeQuerier interface {
	QueryMode(ctx context.Context, iface string) domain.Mode
}

// Selector dispatches scans by adapter mode: monitor mode captures raw
// traffic, anything else falls back to an active managed scan.
type Selector struct {
	modes   ModeQuerier
	monitor ports.ScanBackend
	managed ports.ScanBackend

	// MonitorAvailable is false when the capture tooling is not installed.
	MonitorAvailable bool
}

func NewSelector(modes ModeQuerier, monitor, managed ports.ScanBackend) *Selector {
	return &Selector{modes: modes, monitor: monitor, managed: managed, MonitorAvailable: true}
}

// Select returns the backend for mode.
func (s *Selector) Select(mode domain.Mode) ports.ScanBackend {
	if mode == domain.ModeMonitor && s.MonitorAvailable {
		return s.monitor
	}
	return s.managed
}

// Scan queries the current mode and runs the matching backend.
func (s *Selector) Scan(ctx context.Context, iface string, duration time.Duration) (map[string]domain.NetworkRecord, domain.Backend, error) {
	backend := s.Select(s.modes.QueryMode(ctx, iface))

	ctx, span := telemetry.Tracer().Start(ctx, "scan")
	span.SetAttributes(
		attribute.String("iface", iface),
		attribute.String("backend", string(backend.Kind())),
	)
	defer span.End()

	records, err := backend.Scan(ctx, iface, duration)
	telemetry.ScansTotal.WithLabelValues(string(backend.Kind())).Inc()
	if err != nil {
		span.RecordError(err)
	}
	return records, backend.Kind(), err
}
