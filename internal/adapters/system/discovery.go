package system

import (
	"bufio"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/lcalzada-xor/netraptor/internal/core/ports"
)

const discoveryTimeout = 10 * time.Second

var (
	sysWirelessGlob = "/sys/class/net/*/wireless"
	netInterfaces   = psnet.InterfacesWithContext
)

// DiscoverWireless lists wireless interfaces. Sources are tried in order
// (iwconfig, iw dev, sysfs, then interface names from the kernel) and the
// first one yielding names wins.
func DiscoverWireless(ctx context.Context, runner ports.CommandRunner, logger *slog.Logger) []string {
	sources := []struct {
		name string
		run  func() []string
	}{
		{"iwconfig", func() []string { return fromIwconfig(ctx, runner) }},
		{"iw", func() []string { return fromIwDev(ctx, runner) }},
		{"sysfs", fromSysfs},
		{"netlink", func() []string { return fromKernel(ctx) }},
	}

	for _, src := range sources {
		if names := dedupe(src.run()); len(names) > 0 {
			logger.Debug("wireless interfaces discovered", "source", src.name, "interfaces", names)
			return names
		}
	}
	return nil
}

func fromIwconfig(ctx context.Context, runner ports.CommandRunner) []string {
	res, err := runner.Run(ctx, ports.Command{Name: "iwconfig", Timeout: discoveryTimeout})
	if err != nil {
		return nil
	}
	var out []string
	sc := bufio.NewScanner(strings.NewReader(res.Combined()))
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, "802.11") {
			continue
		}
		if fields := strings.Fields(line); len(fields) > 0 {
			out = append(out, fields[0])
		}
	}
	return out
}

func fromIwDev(ctx context.Context, runner ports.CommandRunner) []string {
	res, err := runner.Run(ctx, ports.Command{Name: "iw", Args: []string{"dev"}, Timeout: discoveryTimeout})
	if err != nil {
		return nil
	}
	var out []string
	sc := bufio.NewScanner(strings.NewReader(res.Stdout))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) >= 2 && fields[0] == "Interface" {
			out = append(out, fields[1])
		}
	}
	return out
}

func fromSysfs() []string {
	matches, err := filepath.Glob(sysWirelessGlob)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.Base(filepath.Dir(m)))
	}
	return out
}

// fromKernel falls back to naming conventions when no wireless tooling exists.
func fromKernel(ctx context.Context) []string {
	ifaces, err := netInterfaces(ctx)
	if err != nil {
		return nil
	}
	var out []string
	for _, i := range ifaces {
		if strings.HasPrefix(i.Name, "wl") {
			out = append(out, i.Name)
		}
	}
	return out
}

// dedupe drops duplicates and names of two characters or fewer, keeping order.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	var out []string
	for _, n := range names {
		if len(n) <= 2 {
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
