package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/lcalzada-xor/netraptor/internal/adapters/parser"
	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
)

// WashScanner discovers WPS-enabled access points with wash.
type WashScanner struct {
	runner ports.CommandRunner
	logger *slog.Logger
	Wash   string
}

var _ ports.WPSScanner = (*WashScanner)(nil)

func NewWashScanner(runner ports.CommandRunner, logger *slog.Logger) *WashScanner {
	return &WashScanner{runner: runner, logger: logger, Wash: "wash"}
}

// ScanWPS runs wash for duration. wash never exits on its own, so hitting
// the timeout is the normal path and its partial output is parsed.
func (s *WashScanner) ScanWPS(ctx context.Context, iface string, duration time.Duration) ([]domain.WPSRecord, error) {
	res, err := s.runner.Run(ctx, ports.Command{Name: s.Wash, Args: []string{"-i", iface, "-C"}, Timeout: duration})
	if err != nil && !errors.Is(err, domain.ErrTimeout) {
		return nil, fmt.Errorf("wps scan: %w", err)
	}
	records := parser.ParseWash(res.Stdout)
	s.logger.Info("wps scan finished", "iface", iface, "wps_networks", len(records))
	return records, nil
}

// HcitoolScanner discovers classic Bluetooth devices.
type HcitoolScanner struct {
	runner ports.CommandRunner
	logger *slog.Logger
}

var _ ports.BluetoothScanner = (*HcitoolScanner)(nil)

func NewHcitoolScanner(runner ports.CommandRunner, logger *slog.Logger) *HcitoolScanner {
	return &HcitoolScanner{runner: runner, logger: logger}
}

// ScanBluetooth powers up the controller and runs an inquiry lasting a
// quarter of duration, bounded by duration.
func (s *HcitoolScanner) ScanBluetooth(ctx context.Context, duration time.Duration) ([]domain.BluetoothDevice, error) {
	for _, c := range []ports.Command{
		{Name: "systemctl", Args: []string{"start", "bluetooth"}, Timeout: 15 * time.Second},
		{Name: "hciconfig", Args: []string{"hci0", "up"}, Timeout: 15 * time.Second},
	} {
		if res, err := s.runner.Run(ctx, c); err != nil || !res.Success() {
			s.logger.Warn("bluetooth setup step failed", "cmd", c.Name, "error", err)
		}
	}

	length := int(duration/time.Second) / 4
	if length < 1 {
		length = 1
	}
	res, err := s.runner.Run(ctx, ports.Command{
		Name:    "hcitool",
		Args:    []string{"scan", "--length", strconv.Itoa(length)},
		Timeout: duration,
	})
	if err != nil && !errors.Is(err, domain.ErrTimeout) {
		return nil, fmt.Errorf("bluetooth scan: %w", err)
	}
	devices := parser.ParseHcitoolScan(res.Stdout)
	s.logger.Info("bluetooth scan finished", "devices", len(devices))
	return devices, nil
}
