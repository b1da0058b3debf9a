package domain

import "time"

// ScanInfo describes the run that produced a report.
type ScanInfo struct {
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Interface string    `json:"interface"`
	Active    string    `json:"active_interface"`
	Monitor   bool      `json:"monitor_mode"`
	Timeout   int       `json:"scan_timeout"`
}

// Summary counts the collections in a report.
type Summary struct {
	TotalNetworks     int `json:"total_networks"`
	WPSNetworks       int `json:"wps_networks"`
	BluetoothDevices  int `json:"bluetooth_devices"`
	HandshakesCapture int `json:"handshakes_captured"`
	EvilTwins         int `json:"evil_twin_groups"`
	AuditFindings     int `json:"audit_findings"`
}

// Report is the end-of-session summary handed to report writers.
type Report struct {
	ScanInfo      ScanInfo          `json:"scan_info"`
	Summary       Summary           `json:"summary"`
	Networks      []NetworkRecord   `json:"networks"`
	WPSNetworks   []WPSRecord       `json:"wps_networks"`
	Bluetooth     []BluetoothDevice `json:"bluetooth_devices"`
	Handshakes    []CaptureArtifact `json:"handshakes"`
	WPSResults    []AttackResult    `json:"wps_results,omitempty"`
	EvilTwins     []EvilTwinFinding `json:"evil_twins,omitempty"`
	AuditFindings []AuditFinding    `json:"audit_findings,omitempty"`
	Deauths       []DeauthResult    `json:"deauth_results,omitempty"`
	Injection     *InjectionResult  `json:"injection_test,omitempty"`
	Cracks        []CrackResult     `json:"crack_results,omitempty"`
	Errors        []string          `json:"errors,omitempty"`
}
