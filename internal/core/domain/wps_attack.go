package domain

import "time"

// DefaultWPSCeiling bounds a brute-force run when no ceiling is configured.
const DefaultWPSCeiling = 3600 * time.Second

// WPSRecord is one row of WPS discovery output. It is kept apart from the
// network inventory and joined to it by BSSID only.
type WPSRecord struct {
	BSSID   string `json:"bssid"`
	Channel int    `json:"channel"`
	RSSI    Signal `json:"rssi"`
	Version string `json:"wps_version"`
	Locked  bool   `json:"locked"`
	ESSID   string `json:"essid"`
}

// WPSAttackConfig contains the parameters of a WPS PIN brute force.
type WPSAttackConfig struct {
	// TargetBSSID is the MAC address of the target AP
	TargetBSSID string `json:"target_bssid"`

	// Interface is the monitor-mode interface to use
	Interface string `json:"interface"`

	// Channel is optional; 0 lets the tool hop.
	Channel int `json:"channel"`

	// ESSID is used to derive the PMK when a passphrase is recovered.
	ESSID string `json:"essid,omitempty"`

	// Ceiling is the wall-clock limit of the whole attack.
	Ceiling time.Duration `json:"ceiling"`
}

// CompletionReason explains why a WPS attack stopped.
type CompletionReason string

const (
	ReasonPINFound      CompletionReason = "pin_found"
	ReasonPINNotFound   CompletionReason = "pin_not_found"
	ReasonTimeout       CompletionReason = "timeout"
	ReasonInterrupted   CompletionReason = "interrupted"
	ReasonProcessExited CompletionReason = "process_exited"
	ReasonStartFailed   CompletionReason = "start_failed"
)

// AttackResult is the outcome of a WPS brute force.
type AttackResult struct {
	BSSID      string           `json:"bssid"`
	PIN        string           `json:"pin,omitempty"`
	Passphrase string           `json:"passphrase,omitempty"`
	PMK        string           `json:"pmk,omitempty"`
	LastPIN    string           `json:"last_pin,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	Duration   time.Duration    `json:"duration"`
	Reason     CompletionReason `json:"reason"`
	Artifact   string           `json:"artifact,omitempty"`
}

// Success reports whether a PIN was recovered.
func (r AttackResult) Success() bool {
	return r.PIN != ""
}
