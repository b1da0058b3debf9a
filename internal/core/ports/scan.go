package ports

import (
	"context"
	"time"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
)

// ScanBackend produces raw network records from one kind of scan.
type ScanBackend interface {
	Kind() domain.Backend
	Scan(ctx context.Context, iface string, duration time.Duration) (map[string]domain.NetworkRecord, error)
}

// WPSScanner discovers WPS-enabled access points.
type WPSScanner interface {
	ScanWPS(ctx context.Context, iface string, duration time.Duration) ([]domain.WPSRecord, error)
}

// BluetoothScanner discovers classic Bluetooth devices.
type BluetoothScanner interface {
	ScanBluetooth(ctx context.Context, duration time.Duration) ([]domain.BluetoothDevice, error)
}
