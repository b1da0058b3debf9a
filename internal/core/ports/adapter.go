package ports

import (
	"context"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
)

// AdapterController drives the wireless adapter state machine.
type AdapterController interface {
	// QueryMode classifies the current mode. ModeUnknown is not an error.
	QueryMode(ctx context.Context, iface string) domain.Mode

	// EnterMonitorMode tries each strategy in order and returns the interface
	// to operate on. degraded is true when no strategy produced monitor mode.
	EnterMonitorMode(ctx context.Context, iface string) (active string, degraded bool)

	// RestoreMode returns the adapter to its original mode. Failures are logged.
	RestoreMode(ctx context.Context, state domain.AdapterState)

	ChannelSetter
}

// ChannelSetter tunes an interface to a channel.
type ChannelSetter interface {
	SetChannel(ctx context.Context, iface string, channel int) error
}
