package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMode(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   Mode
	}{
		{"iwconfig monitor", "wlan0mon  IEEE 802.11  Mode:Monitor  Frequency:2.457 GHz", ModeMonitor},
		{"iwconfig managed", "wlan0  IEEE 802.11  ESSID:off/any\n  Mode:Managed  Access Point: Not-Associated", ModeManaged},
		{"iw info monitor", "Interface wlan0\n\tifindex 3\n\ttype monitor", ModeMonitor},
		{"iw info managed", "Interface wlan0\n\ttype managed", ModeManaged},
		{"no such device", "wlan0mon  No such device", ModeUnknown},
		{"empty", "", ModeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyMode(tt.output))
		})
	}
}

func TestBandForChannel(t *testing.T) {
	assert.Equal(t, Band24GHz, BandForChannel(6))
	assert.Equal(t, Band5GHz, BandForChannel(36))
	assert.Equal(t, WiFiBand(""), BandForChannel(0))
}

func TestAdapterState_ActiveName(t *testing.T) {
	assert.Equal(t, "wlan0", AdapterState{Name: "wlan0"}.ActiveName())
	assert.Equal(t, "wlan0mon", AdapterState{Name: "wlan0", Active: "wlan0mon"}.ActiveName())
}
