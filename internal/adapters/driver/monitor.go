package driver

import (
	"context"
	"regexp"
	"strings"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
	"github.com/lcalzada-xor/netraptor/internal/telemetry"
)

var (
	monIfaceRe  = regexp.MustCompile(`monitor mode (?:enabled|vif enabled)(?: for \S+)? on ([^)\s]+)\)`)
	phyPrefixRe = regexp.MustCompile(`^\[[^\]]*\]`)

	networkServices      = []string{"NetworkManager", "network-manager", "wpa_supplicant"}
	interferingProcesses = []string{"wpa_supplicant", "dhclient", "NetworkManager"}
)

// strategy is one independent way of reaching monitor mode. It reports the
// interface that ended up in monitor mode, if any.
type strategy struct {
	name string
	run  func(ctx context.Context, iface string) (string, bool)
}

func (c *Controller) strategies() []strategy {
	return []strategy{
		{"airmon", c.tryAirmon},
		{"manual", c.tryManual},
		{"direct", c.tryDirect},
	}
}

// EnterMonitorMode runs the strategies in order and stops at the first one
// whose interface reports monitor mode. When all fail the original name is
// returned with degraded set; this never fails.
func (c *Controller) EnterMonitorMode(ctx context.Context, iface string) (string, bool) {
	for _, s := range c.strategies() {
		if ctx.Err() != nil {
			break
		}
		sctx, span := telemetry.Tracer().Start(ctx, "monitor."+s.name)
		active, ok := s.run(sctx, iface)
		span.End()

		telemetry.MonitorStrategyTotal.WithLabelValues(s.name, telemetry.Outcome(ok)).Inc()
		if ok {
			c.logger.Info("monitor mode enabled", "strategy", s.name, "iface", active)
			return active, false
		}
		c.logger.Debug("monitor strategy failed", "strategy", s.name, "iface", iface)
	}

	c.logger.Warn("all monitor mode methods failed, continuing in managed mode", "iface", iface)
	return iface, true
}

// tryAirmon stops network management, lets airmon-ng create the monitor
// interface and probes the names it commonly picks.
func (c *Controller) tryAirmon(ctx context.Context, iface string) (string, bool) {
	for _, svc := range networkServices {
		c.run(ctx, "systemctl", "stop", svc)
		c.run(ctx, "service", svc, "stop")
	}
	c.runAirmon(ctx, "check", "kill")
	c.link(ctx, iface, false)

	res, _ := c.runAirmon(ctx, "start", iface)
	for _, name := range monitorCandidates(iface, parseAirmonInterface(res.Combined())) {
		if c.QueryMode(ctx, name) == domain.ModeMonitor {
			return name, true
		}
	}
	return "", false
}

// tryManual kills interfering processes and cycles the interface through
// down, monitor, up.
func (c *Controller) tryManual(ctx context.Context, iface string) (string, bool) {
	if c.killer != nil {
		n := c.killer.KillByName(ctx, interferingProcesses...)
		c.logger.Debug("killed interfering processes", "count", n)
	}
	c.link(ctx, iface, false)
	c.setMode(ctx, iface, domain.ModeMonitor)
	c.link(ctx, iface, true)

	if c.QueryMode(ctx, iface) == domain.ModeMonitor {
		return iface, true
	}
	return "", false
}

// tryDirect only sets the mode.
func (c *Controller) tryDirect(ctx context.Context, iface string) (string, bool) {
	c.setMode(ctx, iface, domain.ModeMonitor)
	if c.QueryMode(ctx, iface) == domain.ModeMonitor {
		return iface, true
	}
	return "", false
}

func (c *Controller) runAirmon(ctx context.Context, args ...string) (ports.Result, bool) {
	res, err := c.runner.Run(ctx, ports.Command{Name: c.tools.Airmon, Args: args, Timeout: airmonTimeout})
	if err != nil {
		c.logger.Debug("airmon-ng failed", "args", args, "error", err)
		return res, false
	}
	return res, res.Success()
}

// parseAirmonInterface extracts the monitor interface airmon-ng announced,
// e.g. "[phy0]wlan0mon" in newer releases.
func parseAirmonInterface(out string) string {
	m := monIfaceRe.FindStringSubmatch(out)
	if len(m) < 2 {
		return ""
	}
	return phyPrefixRe.ReplaceAllString(strings.TrimSpace(m[1]), "")
}

// monitorCandidates lists interface names to probe after airmon-ng start,
// most likely first.
func monitorCandidates(iface, announced string) []string {
	names := []string{announced, iface + "mon", iface + "_mon"}
	if len(iface) > 0 {
		names = append(names, "mon"+iface[len(iface)-1:], iface[:len(iface)-1]+"mon")
	}
	names = append(names, iface)

	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
