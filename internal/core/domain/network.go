package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Privacy is the coarse security class of a network.
type Privacy string

const (
	PrivacyOpen    Privacy = "OPN"
	PrivacyWEP     Privacy = "WEP"
	PrivacyWPA     Privacy = "WPA"
	PrivacyWPA2    Privacy = "WPA2"
	PrivacyUnknown Privacy = "Unknown"
)

// Backend identifies which scan driver produced a record.
type Backend string

const (
	BackendMonitor Backend = "monitor"
	BackendManaged Backend = "managed"
)

// Sentinels used when a source omits a field.
const (
	HiddenESSID    = "<Hidden>"
	DefaultPower   = -70
	UnknownField   = "Unknown"
	TimestampStyle = "2006-01-02 15:04:05"
)

// ClassifyPrivacy maps raw privacy text from capture tools ("WPA2 WPA", "OPN",
// "WPA3 WPA2", ...) to a Privacy class. The strongest family wins.
func ClassifyPrivacy(raw string) Privacy {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case s == "":
		return PrivacyUnknown
	case strings.Contains(s, "WPA2"), strings.Contains(s, "WPA3"):
		return PrivacyWPA2
	case strings.Contains(s, "WPA"):
		return PrivacyWPA
	case strings.Contains(s, "WEP"):
		return PrivacyWEP
	case strings.Contains(s, "OPN"), strings.Contains(s, "OPEN"):
		return PrivacyOpen
	}
	return PrivacyUnknown
}

// Signal is a power reading in dBm. Valid is false when the source field did
// not parse; an invalid signal never wins a comparison.
type Signal struct {
	DBm   int
	Valid bool
}

// ParseSignal parses a dBm field. Unparsable input yields an invalid Signal.
func ParseSignal(raw string) Signal {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return Signal{}
	}
	return Signal{DBm: v, Valid: true}
}

// SignalOf builds a valid Signal.
func SignalOf(dbm int) Signal {
	return Signal{DBm: dbm, Valid: true}
}

// Beats reports whether s should replace other. Ties keep other.
func (s Signal) Beats(other Signal) bool {
	if !s.Valid {
		return false
	}
	return !other.Valid || s.DBm > other.DBm
}

// String renders the reading, empty when invalid.
func (s Signal) String() string {
	if !s.Valid {
		return ""
	}
	return strconv.Itoa(s.DBm)
}

func (s Signal) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.DBm)
}

func (s *Signal) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = Signal{}
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = SignalOf(v)
	return nil
}

// NetworkRecord is the canonical view of one access point radio.
type NetworkRecord struct {
	BSSID          string    `json:"bssid"`
	ESSID          string    `json:"essid"`
	Channel        int       `json:"channel"`
	Speed          string    `json:"speed"`
	Power          Signal    `json:"power"`
	Privacy        Privacy   `json:"privacy"`
	Encryption     string    `json:"encryption,omitempty"` // raw privacy text as reported
	Cipher         string    `json:"cipher"`
	Authentication string    `json:"authentication"`
	Beacons        int       `json:"beacons"`
	DataPackets    int       `json:"data_packets"`
	FirstSeen      time.Time `json:"first_seen"`
	LastSeen       time.Time `json:"last_seen"`
	Backend        Backend   `json:"backend"`
}

// Band returns the frequency band of the record's channel.
func (n NetworkRecord) Band() WiFiBand {
	return BandForChannel(n.Channel)
}

// IsHidden reports whether the network does not broadcast an ESSID.
func (n NetworkRecord) IsHidden() bool {
	return n.ESSID == "" || n.ESSID == HiddenESSID
}

// Supersedes reports whether n should replace existing in an inventory:
// the stronger valid signal wins and ties keep the existing record.
func (n NetworkRecord) Supersedes(existing NetworkRecord) bool {
	return n.Power.Beats(existing.Power)
}

// ApplyDefaults back-fills absent optional fields so consumers never branch
// on missing data. Power is left alone: an unparsable reading must keep
// losing comparisons until reconciliation is finished (see FillPower).
func (n *NetworkRecord) ApplyDefaults(now time.Time) {
	if n.ESSID == "" {
		n.ESSID = HiddenESSID
	}
	if n.Channel < 0 {
		n.Channel = 0
	}
	if n.Privacy == "" {
		n.Privacy = PrivacyUnknown
	}
	if n.Cipher == "" {
		n.Cipher = UnknownField
	}
	if n.Authentication == "" {
		n.Authentication = UnknownField
	}
	if n.Speed == "" {
		n.Speed = UnknownField
	}
	if n.FirstSeen.IsZero() {
		n.FirstSeen = now
	}
	if n.LastSeen.IsZero() {
		n.LastSeen = now
	}
}

// FillPower replaces an unparsable power reading with DefaultPower.
func (n *NetworkRecord) FillPower() {
	if !n.Power.Valid {
		n.Power = SignalOf(DefaultPower)
	}
}
