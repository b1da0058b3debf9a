package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	handshakeCountRe = regexp.MustCompile(`\((\d+) handshakes?`)
	keyFoundRe       = regexp.MustCompile(`KEY FOUND!\s*\[\s*(.+?)\s*\]`)
)

// HandshakePresent interprets aircrack-ng's listing of a capture. When the
// tool prints per-network counts, at least one must be non-zero; otherwise
// any mention of a handshake counts.
func HandshakePresent(output string) bool {
	matches := handshakeCountRe.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return strings.Contains(strings.ToLower(output), "handshake")
	}
	for _, m := range matches {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return true
		}
	}
	return false
}

// KeyFound extracts the passphrase from a successful dictionary run.
func KeyFound(output string) (string, bool) {
	m := keyFoundRe.FindStringSubmatch(output)
	if m == nil {
		return "", false
	}
	return m[1], true
}
