package parser

import (
	"bufio"
	"strings"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
)

// ParseHcitoolScan parses `hcitool scan` output: one tab-indented
// "<MAC>\t<name>" row per device after the "Scanning ..." banner.
func ParseHcitoolScan(output string) []domain.BluetoothDevice {
	var out []domain.BluetoothDevice
	sc := bufio.NewScanner(strings.NewReader(output))
	for sc.Scan() {
		parts := strings.Split(sc.Text(), "\t")
		if len(parts) < 2 {
			continue
		}
		mac := strings.TrimSpace(parts[1])
		if !domain.IsValidMAC(mac) {
			continue
		}
		name := "Unknown"
		if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
			name = strings.TrimSpace(parts[2])
		}
		out = append(out, domain.BluetoothDevice{MAC: strings.ToUpper(mac), Name: name})
	}
	return out
}
