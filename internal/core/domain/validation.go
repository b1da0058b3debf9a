package domain

import (
	"regexp"
	"strings"
)

// Validation Helpers

var (
	macRegex       = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`)
	interfaceRegex = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)
)

// IsValidMAC checks if the string is a valid MAC address
func IsValidMAC(mac string) bool {
	return macRegex.MatchString(mac)
}

// IsValidInterface checks if the string is a safe interface name (alphanumeric + - _)
func IsValidInterface(iface string) bool {
	// IFNAMSIZ is 16 including the terminator
	if len(iface) == 0 || len(iface) > 15 {
		return false
	}
	return interfaceRegex.MatchString(iface)
}

// NormalizeBSSID returns the canonical upper-case, colon separated form of a MAC address.
func NormalizeBSSID(raw string) (string, error) {
	mac := strings.TrimSpace(raw)
	if !IsValidMAC(mac) {
		return "", ErrInvalidBSSID
	}
	return strings.ToUpper(strings.ReplaceAll(mac, "-", ":")), nil
}

// CompactBSSID strips separators, as used in artifact file names.
func CompactBSSID(bssid string) string {
	return strings.NewReplacer(":", "", "-", "").Replace(bssid)
}
