package domain

import "strings"

// Mode is the operating mode reported by a wireless adapter.
type Mode string

const (
	ModeManaged Mode = "managed"
	ModeMonitor Mode = "monitor"
	ModeUnknown Mode = "unknown"
)

// WiFiBand represents a typed string for frequency bands.
type WiFiBand string

const (
	Band24GHz WiFiBand = "2.4GHz"
	Band5GHz  WiFiBand = "5GHz"
)

// BandForChannel maps a channel number to its band. Channel 0 is unknown.
func BandForChannel(ch int) WiFiBand {
	switch {
	case ch >= 1 && ch <= 14:
		return Band24GHz
	case ch >= 32:
		return Band5GHz
	}
	return ""
}

// ClassifyMode maps the free text printed by iwconfig or `iw dev <if> info`
// to a Mode. Unrecognized phrasing yields ModeUnknown.
func ClassifyMode(output string) Mode {
	switch {
	case strings.Contains(output, "Mode:Monitor"):
		return ModeMonitor
	case strings.Contains(output, "Mode:Managed"):
		return ModeManaged
	}

	lower := strings.ToLower(output)
	switch {
	case strings.Contains(lower, "monitor"):
		return ModeMonitor
	case strings.Contains(lower, "managed"):
		return ModeManaged
	}
	return ModeUnknown
}

// AdapterState tracks the wireless adapter for the lifetime of a session.
type AdapterState struct {
	// Name is the interface selected at startup.
	Name string `json:"name"`

	// Active is the interface operations run on. It differs from Name when
	// the monitor helper created a new virtual interface (e.g. wlan0mon).
	Active string `json:"active"`

	// OriginalMode is captured before any mutation and drives restoration.
	OriginalMode Mode `json:"original_mode"`

	// Monitor is true when negotiation ended with the adapter in monitor mode.
	Monitor bool `json:"monitor"`

	// Negotiated is set once monitor negotiation has been attempted; only
	// negotiated adapters are restored at teardown.
	Negotiated bool `json:"negotiated"`
}

// ActiveName returns the interface operations should target.
func (s AdapterState) ActiveName() string {
	if s.Active != "" {
		return s.Active
	}
	return s.Name
}
