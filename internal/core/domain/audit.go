package domain

// Severity levels for audit findings.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// EvilTwinFinding groups access points that broadcast the same ESSID.
type EvilTwinFinding struct {
	ESSID     string    `json:"essid"`
	BSSIDs    []string  `json:"bssids"`
	Privacies []Privacy `json:"privacies"`
	Channels  []int     `json:"channels"`

	// Impersonation is set when the group disagrees on privacy.
	Impersonation bool `json:"probable_impersonation"`

	// SharedChannel is set when at least two members sit on the same
	// channel; otherwise every member uses a distinct channel.
	SharedChannel bool `json:"shared_channel"`
}

// AuditIssue is one weakness flagged on a WPA network.
type AuditIssue struct {
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Audit issue codes.
const (
	IssueWPSEnabled    = "wps_enabled"
	IssueStrongSignal  = "strong_signal"
	IssueDefaultESSID  = "default_essid"
	StrongSignalCutoff = -30
)

// AuditFinding lists the issues found on one network.
type AuditFinding struct {
	BSSID   string       `json:"bssid"`
	ESSID   string       `json:"essid"`
	Privacy Privacy      `json:"privacy"`
	Issues  []AuditIssue `json:"issues"`
}
