package wps

import (
	"regexp"
	"strings"
)

// ReaverParser handles the parsing of reaver output.
type ReaverParser struct {
	tryingRegex *regexp.Regexp
	pinRegex    *regexp.Regexp
	pskRegex    *regexp.Regexp
}

func NewReaverParser() *ReaverParser {
	return &ReaverParser{
		tryingRegex: regexp.MustCompile(`(?i)Trying pin "?(\d+)"?`),
		pinRegex:    regexp.MustCompile(`(?i)WPS PIN:\s*['"]?([0-9]+)['"]?`),
		pskRegex:    regexp.MustCompile(`(?i)WPA PSK:\s*(.*?)\s*$`),
	}
}

// ParseResult is what one output line revealed.
type ParseResult struct {
	// TriedPIN is the PIN currently being attempted.
	TriedPIN string
	PIN      string
	PSK      string

	// NotFound is the terminal failure marker.
	NotFound bool

	// Warning names a recoverable condition such as rate limiting.
	Warning string
}

func (p *ReaverParser) ParseLine(line string) ParseResult {
	var res ParseResult

	if m := p.tryingRegex.FindStringSubmatch(line); len(m) > 1 {
		res.TriedPIN = m[1]
	}
	if m := p.pinRegex.FindStringSubmatch(line); len(m) > 1 {
		res.PIN = m[1]
	}
	if m := p.pskRegex.FindStringSubmatch(line); len(m) > 1 {
		res.PSK = unquote(m[1])
	}

	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "pin not found"):
		res.NotFound = true
	case strings.Contains(lower, "rate limiting"):
		res.Warning = "rate limiting"
	case strings.Contains(lower, "receive timeout"):
		res.Warning = "receive timeout"
	}
	return res
}

// unquote strips one pair of matching outer quotes. Quotes inside the
// passphrase are kept.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
