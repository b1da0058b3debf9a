package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const airodumpDump = "\r\n" +
	"BSSID, First time seen, Last time seen, channel, Speed, Privacy, Cipher, Authentication, Power, # beacons, # IV, LAN IP, ID-length, ESSID, Key\r\n" +
	"AA:BB:CC:DD:EE:01, 2026-01-02 10:00:00, 2026-01-02 10:00:30,  6,  54, WPA2, CCMP, PSK, -45,       12,        3,   0.  0.  0.   0,   7, CorpNet, \r\n" +
	"aa:bb:cc:dd:ee:02, 2026-01-02 10:00:01, 2026-01-02 10:00:31, 11,  54, OPN, , , -60,        5,        0,   0.  0.  0.   0,   0, , \r\n" +
	"AA:BB:CC:DD:EE:03, 2026-01-02 10:00:01, 2026-01-02 10:00:31,  1,  54, WPA2 WPA, CCMP TKIP, PSK, -70,  5,  0,   0.  0.  0.   0,  12, Cafe, Bar 5G, \r\n" +
	"AA:BB:CC:DD:EE:01, 2026-01-02 10:00:00, 2026-01-02 10:00:40,  6,  54, WPA2, CCMP, PSK, -30,       20,        3,   0.  0.  0.   0,   7, CorpNet, \r\n" +
	"AA:BB:CC:DD:EE:01, 2026-01-02 10:00:00, 2026-01-02 10:00:50,  6,  54, WPA2, CCMP, PSK, bad,       25,        3,   0.  0.  0.   0,   7, CorpNet, \r\n" +
	"short, row\r\n" +
	"not-a-mac, 2026-01-02 10:00:01, 2026-01-02 10:00:31,  1,  54, OPN, , , -10,  5,  0,   0.  0.  0.   0,  4, Evil, \r\n" +
	"\r\n" +
	"Station MAC, First time seen, Last time seen, Power, # packets, BSSID, Probed ESSIDs\r\n" +
	"11:22:33:44:55:66, 2026-01-02 10:00:01, 2026-01-02 10:00:31, -50, 10, AA:BB:CC:DD:EE:01, , , , , , , , \r\n"

func TestParseAirodumpCSV(t *testing.T) {
	got, err := ParseAirodumpCSV(strings.NewReader(airodumpDump), testNow)
	require.NoError(t, err)
	require.Len(t, got, 3, "station rows and malformed rows are skipped")

	corp := got["AA:BB:CC:DD:EE:01"]
	assert.Equal(t, "CorpNet", corp.ESSID)
	assert.Equal(t, 6, corp.Channel)
	assert.Equal(t, domain.SignalOf(-30), corp.Power, "strongest duplicate wins, malformed loses")
	assert.Equal(t, 20, corp.Beacons)
	assert.Equal(t, 3, corp.DataPackets)
	assert.Equal(t, domain.PrivacyWPA2, corp.Privacy)
	assert.Equal(t, "CCMP", corp.Cipher)
	assert.Equal(t, domain.BackendMonitor, corp.Backend)
	assert.Equal(t, 2026, corp.FirstSeen.Year())

	hidden := got["AA:BB:CC:DD:EE:02"]
	assert.Equal(t, domain.HiddenESSID, hidden.ESSID)
	assert.Equal(t, domain.PrivacyOpen, hidden.Privacy)
	assert.Equal(t, domain.UnknownField, hidden.Cipher)

	cafe := got["AA:BB:CC:DD:EE:03"]
	assert.Equal(t, "Cafe, Bar 5G", cafe.ESSID)
	assert.Equal(t, "WPA2 WPA", cafe.Encryption)
}

func TestParseAirodumpCSV_NoValidRows(t *testing.T) {
	dump := "BSSID, First time seen, Last time seen, channel, Speed, Privacy, Cipher, Authentication, Power, # beacons, # IV, LAN IP, ID-length, ESSID, Key\r\n" +
		"BSSID, x\r\n\r\n"
	got, err := ParseAirodumpCSV(strings.NewReader(dump), testNow)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseAirodumpCSV_NoHeader(t *testing.T) {
	got, err := ParseAirodumpCSV(strings.NewReader("garbage\nmore garbage\n"), testNow)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseAirodumpFile(t *testing.T) {
	got, err := ParseAirodumpFile(filepath.Join(t.TempDir(), "missing-01.csv"), testNow)
	require.NoError(t, err, "a missing dump is an empty inventory")
	assert.Empty(t, got)

	path := filepath.Join(t.TempDir(), "scan-01.csv")
	require.NoError(t, os.WriteFile(path, []byte(airodumpDump), 0o600))
	got, err = ParseAirodumpFile(path, testNow)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
