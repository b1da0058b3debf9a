package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
)

func network(bssid, essid string, privacy domain.Privacy, channel, power int) domain.NetworkRecord {
	return domain.NetworkRecord{
		BSSID: bssid, ESSID: essid, Privacy: privacy, Channel: channel, Power: domain.SignalOf(power),
	}
}

func inventoryOf(recs ...domain.NetworkRecord) map[string]domain.NetworkRecord {
	m := make(map[string]domain.NetworkRecord, len(recs))
	for _, r := range recs {
		m[r.BSSID] = r
	}
	return m
}

func TestDetectEvilTwins_Impersonation(t *testing.T) {
	m := inventoryOf(
		network("AA:00:00:00:00:01", "CorpNet", domain.PrivacyWPA2, 6, -50),
		network("AA:00:00:00:00:02", "CorpNet", domain.PrivacyOpen, 6, -40),
		network("AA:00:00:00:00:03", "Lonely", domain.PrivacyWPA2, 1, -40),
	)

	got := DetectEvilTwins(m)
	require.Len(t, got, 1)
	assert.Equal(t, "CorpNet", got[0].ESSID)
	assert.True(t, got[0].Impersonation)
	assert.True(t, got[0].SharedChannel)
	assert.Equal(t, []string{"AA:00:00:00:00:01", "AA:00:00:00:00:02"}, got[0].BSSIDs)
	assert.ElementsMatch(t, []domain.Privacy{domain.PrivacyOpen, domain.PrivacyWPA2}, got[0].Privacies)
}

func TestDetectEvilTwins_SamePrivacyDifferentChannels(t *testing.T) {
	m := inventoryOf(
		network("AA:00:00:00:00:01", "Mesh", domain.PrivacyWPA2, 1, -50),
		network("AA:00:00:00:00:02", "Mesh", domain.PrivacyWPA2, 11, -60),
	)

	got := DetectEvilTwins(m)
	require.Len(t, got, 1)
	assert.False(t, got[0].Impersonation, "suspicious, not impersonation")
	assert.False(t, got[0].SharedChannel)
	assert.Equal(t, []int{1, 11}, got[0].Channels)
}

func TestDetectEvilTwins_IgnoresHidden(t *testing.T) {
	m := inventoryOf(
		network("AA:00:00:00:00:01", domain.HiddenESSID, domain.PrivacyWPA2, 1, -50),
		network("AA:00:00:00:00:02", domain.HiddenESSID, domain.PrivacyOpen, 1, -60),
	)
	assert.Empty(t, DetectEvilTwins(m))
}

func TestAuditWPA(t *testing.T) {
	m := inventoryOf(
		network("AA:00:00:00:00:01", "NETGEAR42", domain.PrivacyWPA2, 6, -25),
		network("AA:00:00:00:00:02", "Office", domain.PrivacyWPA, 1, -60),
		network("AA:00:00:00:00:03", "Cafe", domain.PrivacyOpen, 11, -20),
	)
	wps := []domain.WPSRecord{{BSSID: "aa:00:00:00:00:01"}}

	got := AuditWPA(m, wps)
	require.Len(t, got, 2, "open networks are not audited")

	weak := got[0]
	assert.Equal(t, "AA:00:00:00:00:01", weak.BSSID)
	var codes []string
	for _, i := range weak.Issues {
		codes = append(codes, i.Code)
	}
	assert.Equal(t, []string{domain.IssueWPSEnabled, domain.IssueStrongSignal, domain.IssueDefaultESSID}, codes)

	assert.Empty(t, got[1].Issues)
}

func TestHasWPS(t *testing.T) {
	wps := []domain.WPSRecord{{BSSID: "AA:BB:CC:DD:EE:FF"}}
	assert.True(t, HasWPS(wps, "aa:bb:cc:dd:ee:ff"))
	assert.False(t, HasWPS(wps, "11:22:33:44:55:66"))
}
