package system

import (
	"log/slog"
	"strings"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/ports"
)

// requiredTools maps each optional package to the binaries it must provide.
var requiredTools = map[string][]string{
	domain.PkgAircrack:  {"airmon-ng", "airodump-ng", "aireplay-ng", "aircrack-ng"},
	domain.PkgReaver:    {"reaver", "wash"},
	domain.PkgBluetooth: {"hciconfig", "hcitool"},
	domain.PkgHcxtools:  {"hcxdumptool", "hcxpcapngtool"},
}

// ProbeTools checks which optional packages are fully installed. A package is
// available only when every one of its binaries resolves. paths maps a
// binary name to the configured path that replaces it.
func ProbeTools(runner ports.CommandRunner, paths map[string]string, logger *slog.Logger) domain.ToolInventory {
	inv := make(domain.ToolInventory, len(requiredTools))
	for pkg, bins := range requiredTools {
		ok := true
		for _, bin := range bins {
			if p := paths[bin]; p != "" {
				bin = p
			}
			if _, err := runner.LookPath(bin); err != nil {
				ok = false
				break
			}
		}
		inv[pkg] = ok
	}

	if missing := inv.Missing(); len(missing) > 0 {
		logger.Warn("optional packages not installed",
			"missing", strings.Join(missing, ","),
			"hint", "sudo apt-get install "+strings.Join(missing, " "))
	}
	return inv
}
