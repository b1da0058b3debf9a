package parser

import (
	"bufio"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
)

var (
	freqRegex     = regexp.MustCompile(`Frequency[:=]\s*([\d.]+)\s*(GHz|MHz)?`)
	channelRegex  = regexp.MustCompile(`Channel[\s:]*(\d+)`)
	signalRegex   = regexp.MustCompile(`Signal level[=:]\s*(-?\d+)\s*dBm`)
	groupCipherRe = regexp.MustCompile(`Group Cipher\s*:\s*(\S+)`)
	authSuitesRe  = regexp.MustCompile(`Authentication Suites \(\d+\)\s*:\s*(.+)`)
)

// FrequencyToChannel converts a centre frequency to a channel number.
// Values above 1000 are taken as MHz, everything else as GHz.
func FrequencyToChannel(freq float64) int {
	if freq > 1000 {
		freq /= 1000
	}
	switch {
	case freq <= 0:
		return 0
	case math.Abs(freq-2.484) < 0.0005:
		return 14
	case freq < 2.5:
		return int(math.Round((freq - 2.407) / 0.005))
	default:
		return int(math.Round((freq - 5.000) / 0.005))
	}
}

// iwlistCell accumulates one "Cell NN - Address:" block.
type iwlistCell struct {
	rec     domain.NetworkRecord
	hasKey  bool
	keyOn   bool
	wpa     bool
	wpa2    bool
	channel bool
}

func (c *iwlistCell) finish(now time.Time) domain.NetworkRecord {
	r := c.rec
	switch {
	case c.wpa2:
		r.Privacy = domain.PrivacyWPA2
		r.Encryption = "WPA2"
	case c.wpa:
		r.Privacy = domain.PrivacyWPA
		r.Encryption = "WPA"
	case c.hasKey && c.keyOn:
		r.Privacy = domain.PrivacyWEP
		r.Encryption = "WEP"
		if r.Cipher == "" {
			r.Cipher = "WEP"
		}
		if r.Authentication == "" {
			r.Authentication = "Open"
		}
	case c.hasKey:
		r.Privacy = domain.PrivacyOpen
		r.Encryption = "OPN"
		r.Cipher = "None"
		r.Authentication = "Open"
	}
	if (c.wpa || c.wpa2) && r.Authentication == "" {
		r.Authentication = "PSK"
	}
	r.Backend = domain.BackendManaged
	r.ApplyDefaults(now)
	return r
}

// ParseIwlist parses `iwlist <iface> scan` output. Each cell starts at an
// Address marker; fields absent from a cell are back-filled with defaults.
func ParseIwlist(output string, now time.Time) map[string]domain.NetworkRecord {
	out := make(map[string]domain.NetworkRecord)
	var cur *iwlistCell

	flush := func() {
		if cur == nil {
			return
		}
		upsert(out, cur.finish(now))
		cur = nil
	}

	sc := bufio.NewScanner(strings.NewReader(output))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())

		if strings.Contains(line, "Cell") && strings.Contains(line, "Address:") {
			flush()
			addr := strings.TrimSpace(line[strings.Index(line, "Address:")+len("Address:"):])
			bssid, err := domain.NormalizeBSSID(addr)
			if err != nil {
				continue
			}
			cur = &iwlistCell{rec: domain.NetworkRecord{BSSID: bssid}}
			continue
		}
		if cur == nil {
			continue
		}

		switch {
		case strings.HasPrefix(line, "ESSID:"):
			essid := strings.Trim(strings.TrimPrefix(line, "ESSID:"), `"`)
			if essid == "" {
				essid = domain.HiddenESSID
			}
			cur.rec.ESSID = essid

		case strings.Contains(line, "Frequency"):
			if m := channelRegex.FindStringSubmatch(line); m != nil {
				cur.rec.Channel = atoiOr(m[1], 0)
				cur.channel = true
			}
			if m := freqRegex.FindStringSubmatch(line); m != nil {
				unit := m[2]
				if unit == "" {
					unit = "GHz"
				}
				cur.rec.Speed = m[1] + " " + unit
				if !cur.channel {
					if f, err := strconv.ParseFloat(m[1], 64); err == nil {
						cur.rec.Channel = FrequencyToChannel(f)
					}
				}
			}

		case strings.HasPrefix(line, "Channel"):
			if m := channelRegex.FindStringSubmatch(line); m != nil {
				cur.rec.Channel = atoiOr(m[1], 0)
				cur.channel = true
			}

		case strings.Contains(line, "Signal level"):
			if m := signalRegex.FindStringSubmatch(line); m != nil {
				cur.rec.Power = domain.ParseSignal(m[1])
			}

		case strings.HasPrefix(line, "Encryption key:"):
			cur.hasKey = true
			cur.keyOn = strings.TrimSpace(strings.TrimPrefix(line, "Encryption key:")) == "on"

		case strings.Contains(line, "IE: IEEE 802.11i/WPA2"):
			cur.wpa2 = true

		case strings.Contains(line, "IE: WPA"):
			cur.wpa = true

		case strings.HasPrefix(line, "Group Cipher"):
			if m := groupCipherRe.FindStringSubmatch(line); m != nil && cur.rec.Cipher == "" {
				cur.rec.Cipher = m[1]
			}

		case strings.HasPrefix(line, "Authentication Suites"):
			if m := authSuitesRe.FindStringSubmatch(line); m != nil && cur.rec.Authentication == "" {
				cur.rec.Authentication = strings.TrimSpace(m[1])
			}
		}
	}
	flush()
	return out
}
