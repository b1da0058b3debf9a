package inventory

import (
	"sort"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
)

// DetectEvilTwins groups networks by ESSID. Any ESSID served by two or more
// BSSIDs is suspicious; disagreement on privacy marks probable impersonation.
// Hidden networks are never grouped.
func DetectEvilTwins(m map[string]domain.NetworkRecord) []domain.EvilTwinFinding {
	groups := make(map[string][]domain.NetworkRecord)
	for _, rec := range m {
		if rec.IsHidden() {
			continue
		}
		groups[rec.ESSID] = append(groups[rec.ESSID], rec)
	}

	var findings []domain.EvilTwinFinding
	for essid, members := range groups {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i].BSSID < members[j].BSSID })

		f := domain.EvilTwinFinding{ESSID: essid}
		privacies := make(map[domain.Privacy]struct{})
		channels := make(map[int]struct{})
		for _, rec := range members {
			f.BSSIDs = append(f.BSSIDs, rec.BSSID)
			if _, ok := privacies[rec.Privacy]; !ok {
				privacies[rec.Privacy] = struct{}{}
				f.Privacies = append(f.Privacies, rec.Privacy)
			}
			if _, ok := channels[rec.Channel]; !ok {
				channels[rec.Channel] = struct{}{}
				f.Channels = append(f.Channels, rec.Channel)
			}
		}
		sort.Slice(f.Privacies, func(i, j int) bool { return f.Privacies[i] < f.Privacies[j] })
		sort.Ints(f.Channels)

		f.Impersonation = len(privacies) > 1
		f.SharedChannel = len(channels) < len(members)
		findings = append(findings, f)
	}

	sort.Slice(findings, func(i, j int) bool { return findings[i].ESSID < findings[j].ESSID })
	return findings
}
