package driver

import (
	"context"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
)

// RestoreMode returns the adapter to its original mode and restarts network
// management. It runs on its own deadline so that it still works when the
// session context has already been cancelled. Failures are only logged.
func (c *Controller) RestoreMode(ctx context.Context, st domain.AdapterState) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
	defer cancel()

	if active := st.ActiveName(); active != st.Name {
		if _, ok := c.runAirmon(ctx, "stop", active); !ok {
			c.logger.Warn("failed to remove monitor interface", "iface", active)
		}
	}

	mode := st.OriginalMode
	if mode == domain.ModeUnknown || mode == "" {
		mode = domain.ModeManaged
	}
	c.link(ctx, st.Name, false)
	if !c.setMode(ctx, st.Name, mode) {
		c.logger.Warn("failed to restore interface mode", "iface", st.Name, "mode", mode)
	}
	c.link(ctx, st.Name, true)

	restarted := false
	for _, args := range [][]string{
		{"systemctl", "start", "wpa_supplicant"},
		{"systemctl", "start", "NetworkManager"},
		{"service", "network-manager", "start"},
	} {
		if _, ok := c.run(ctx, args[0], args[1:]...); ok {
			restarted = true
		}
	}
	if !restarted {
		c.logger.Warn("could not restart network services", "iface", st.Name)
	}
	c.logger.Info("adapter restored", "iface", st.Name, "mode", mode)
}
