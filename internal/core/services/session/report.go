package session

import (
	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/core/services/inventory"
)

// Report snapshots the session into a report. scanTimeout is the configured
// scan duration in seconds.
func (s *Session) Report(scanTimeout int) domain.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := domain.Report{
		ScanInfo: domain.ScanInfo{
			SessionID: s.ID,
			Timestamp: s.StartedAt,
			Interface: s.state.Name,
			Active:    s.state.ActiveName(),
			Monitor:   s.state.Monitor,
			Timeout:   scanTimeout,
		},
		Networks:      inventory.Sorted(s.networksLocked()),
		WPSNetworks:   append([]domain.WPSRecord{}, s.wps...),
		Bluetooth:     append([]domain.BluetoothDevice{}, s.bluetooth...),
		Handshakes:    append([]domain.CaptureArtifact{}, s.handshakes...),
		WPSResults:    append([]domain.AttackResult(nil), s.wpsResults...),
		EvilTwins:     append([]domain.EvilTwinFinding(nil), s.evilTwins...),
		AuditFindings: append([]domain.AuditFinding(nil), s.audit...),
		Deauths:       append([]domain.DeauthResult(nil), s.deauths...),
		Cracks:        append([]domain.CrackResult(nil), s.cracks...),
		Errors:        append([]string(nil), s.errs...),
	}
	if s.injection != nil {
		inj := *s.injection
		r.Injection = &inj
	}

	r.Summary = domain.Summary{
		TotalNetworks:     len(r.Networks),
		WPSNetworks:       len(r.WPSNetworks),
		BluetoothDevices:  len(r.Bluetooth),
		HandshakesCapture: len(r.Handshakes),
		EvilTwins:         len(r.EvilTwins),
		AuditFindings:     len(r.AuditFindings),
	}
	return r
}
