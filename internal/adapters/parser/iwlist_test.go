package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
)

const iwlistOutput = `wlan0     Scan completed :
          Cell 01 - Address: AA:BB:CC:DD:EE:01
                    Channel:6
                    Frequency:2.437 GHz (Channel 6)
                    Quality=70/70  Signal level=-40 dBm
                    Encryption key:on
                    ESSID:"CorpNet"
                    IE: IEEE 802.11i/WPA2 Version 1
                        Group Cipher : CCMP
                        Pairwise Ciphers (1) : CCMP
                        Authentication Suites (1) : PSK
                    IE: WPA Version 1
          Cell 02 - Address: aa:bb:cc:dd:ee:02
                    Frequency:5.18 GHz
                    Quality=40/70  Signal level=-70 dBm
                    Encryption key:off
                    ESSID:""
          Cell 03 - Address: AA:BB:CC:DD:EE:03
                    Frequency:2.412 GHz
                    Encryption key:on
                    ESSID:"OldRouter"
          Cell 04 - Address: AA:BB:CC:DD:EE:04
                    ESSID:"Bare"
`

func TestParseIwlist(t *testing.T) {
	got := ParseIwlist(iwlistOutput, testNow)
	require.Len(t, got, 4)

	corp := got["AA:BB:CC:DD:EE:01"]
	assert.Equal(t, "CorpNet", corp.ESSID)
	assert.Equal(t, 6, corp.Channel)
	assert.Equal(t, domain.SignalOf(-40), corp.Power)
	assert.Equal(t, domain.PrivacyWPA2, corp.Privacy, "a WPA IE must not downgrade WPA2")
	assert.Equal(t, "CCMP", corp.Cipher)
	assert.Equal(t, "PSK", corp.Authentication)
	assert.Equal(t, domain.BackendManaged, corp.Backend)

	open := got["AA:BB:CC:DD:EE:02"]
	assert.Equal(t, 36, open.Channel)
	assert.Equal(t, domain.HiddenESSID, open.ESSID)
	assert.Equal(t, domain.PrivacyOpen, open.Privacy)
	assert.Equal(t, "None", open.Cipher)

	wep := got["AA:BB:CC:DD:EE:03"]
	assert.Equal(t, 1, wep.Channel)
	assert.Equal(t, domain.PrivacyWEP, wep.Privacy)
	assert.False(t, wep.Power.Valid)

	bare := got["AA:BB:CC:DD:EE:04"]
	assert.Equal(t, 0, bare.Channel)
	assert.Equal(t, domain.PrivacyUnknown, bare.Privacy)
	assert.Equal(t, domain.UnknownField, bare.Cipher)
	assert.Equal(t, domain.UnknownField, bare.Authentication)
	assert.Equal(t, domain.UnknownField, bare.Speed)
	assert.Equal(t, 0, bare.Beacons)
	assert.Equal(t, testNow, bare.LastSeen)
}

func TestParseIwlist_Empty(t *testing.T) {
	assert.Empty(t, ParseIwlist("wlan0     No scan results\n", testNow))
}

func TestFrequencyToChannel(t *testing.T) {
	tests := []struct {
		freq float64
		want int
	}{
		{2.412, 1},
		{2.437, 6},
		{2.472, 13},
		{2.484, 14},
		{5.180, 36},
		{5.745, 149},
		{2412, 1},
		{5180, 36},
		{0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FrequencyToChannel(tt.freq), "freq %v", tt.freq)
	}
}
