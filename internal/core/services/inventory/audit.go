package inventory

import (
	"fmt"
	"strings"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
)

var defaultESSIDs = []string{"linksys", "netgear", "dlink", "default", "wireless"}

// AuditWPA inspects every WPA or WPA2 network for common weaknesses. Networks
// without issues are still listed so the report shows what was audited.
func AuditWPA(m map[string]domain.NetworkRecord, wps []domain.WPSRecord) []domain.AuditFinding {
	wpsBSSIDs := make(map[string]struct{}, len(wps))
	for _, w := range wps {
		wpsBSSIDs[strings.ToUpper(w.BSSID)] = struct{}{}
	}

	var findings []domain.AuditFinding
	for _, rec := range Sorted(m) {
		if rec.Privacy != domain.PrivacyWPA && rec.Privacy != domain.PrivacyWPA2 {
			continue
		}
		f := domain.AuditFinding{BSSID: rec.BSSID, ESSID: rec.ESSID, Privacy: rec.Privacy}

		if _, ok := wpsBSSIDs[rec.BSSID]; ok {
			f.Issues = append(f.Issues, domain.AuditIssue{
				Code:        domain.IssueWPSEnabled,
				Description: "WPS enabled - vulnerable to PIN brute force",
				Severity:    domain.SeverityHigh,
			})
		}
		if rec.Power.Valid && rec.Power.DBm > domain.StrongSignalCutoff {
			f.Issues = append(f.Issues, domain.AuditIssue{
				Code:        domain.IssueStrongSignal,
				Description: fmt.Sprintf("Very strong signal (%d dBm) - large attack surface", rec.Power.DBm),
				Severity:    domain.SeverityLow,
			})
		}
		if hasDefaultName(rec.ESSID) {
			f.Issues = append(f.Issues, domain.AuditIssue{
				Code:        domain.IssueDefaultESSID,
				Description: "Using default/common SSID",
				Severity:    domain.SeverityMedium,
			})
		}
		findings = append(findings, f)
	}
	return findings
}

func hasDefaultName(essid string) bool {
	lower := strings.ToLower(essid)
	for _, n := range defaultESSIDs {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

// HasWPS reports whether bssid appears in the WPS discovery results.
func HasWPS(wps []domain.WPSRecord, bssid string) bool {
	for _, w := range wps {
		if strings.EqualFold(w.BSSID, bssid) {
			return true
		}
	}
	return false
}
