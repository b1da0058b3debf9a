// Package parser turns the text output of wireless tools into domain records.
// Malformed rows are skipped, never fatal.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
)

// Positional columns of the access point section of an airodump-ng CSV.
const (
	colBSSID = iota
	colFirstSeen
	colLastSeen
	colChannel
	colSpeed
	colPrivacy
	colCipher
	colAuth
	colPower
	colBeacons
	colIV
	colLANIP
	colIDLength
	colESSID

	minAirodumpFields = colESSID + 1
)

// ParseAirodumpFile parses a CSV dump from disk. A missing file yields an
// empty inventory.
func ParseAirodumpFile(path string, now time.Time) (map[string]domain.NetworkRecord, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]domain.NetworkRecord{}, nil
	}
	if err != nil {
		return map[string]domain.NetworkRecord{}, fmt.Errorf("open dump: %w", err)
	}
	defer f.Close()
	return ParseAirodumpCSV(f, now)
}

// ParseAirodumpCSV reads the access point section, which runs from the header
// row naming both BSSID and ESSID up to the first blank line. The station
// section that follows is ignored.
func ParseAirodumpCSV(r io.Reader, now time.Time) (map[string]domain.NetworkRecord, error) {
	out := make(map[string]domain.NetworkRecord)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	inSection := false
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if !inSection {
			if strings.Contains(line, "BSSID") && strings.Contains(line, "ESSID") {
				inSection = true
			}
			continue
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		rec, ok := parseAirodumpRow(line, now)
		if !ok {
			continue
		}
		upsert(out, rec)
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("read dump: %w", err)
	}
	return out, nil
}

func parseAirodumpRow(line string, now time.Time) (domain.NetworkRecord, bool) {
	raw := strings.Split(line, ",")
	if len(raw) < minAirodumpFields {
		return domain.NetworkRecord{}, false
	}
	parts := make([]string, len(raw))
	for i, p := range raw {
		parts[i] = strings.TrimSpace(p)
	}

	if parts[colBSSID] == "" || parts[colBSSID] == "BSSID" {
		return domain.NetworkRecord{}, false
	}
	bssid, err := domain.NormalizeBSSID(parts[colBSSID])
	if err != nil {
		return domain.NetworkRecord{}, false
	}

	rec := domain.NetworkRecord{
		BSSID:          bssid,
		ESSID:          airodumpESSID(raw, parts),
		Channel:        atoiOr(parts[colChannel], 0),
		Speed:          parts[colSpeed],
		Encryption:     parts[colPrivacy],
		Privacy:        domain.ClassifyPrivacy(parts[colPrivacy]),
		Cipher:         parts[colCipher],
		Authentication: parts[colAuth],
		Power:          domain.ParseSignal(parts[colPower]),
		Beacons:        atoiOr(parts[colBeacons], 0),
		DataPackets:    atoiOr(parts[colIV], 0),
		FirstSeen:      parseSeen(parts[colFirstSeen]),
		LastSeen:       parseSeen(parts[colLastSeen]),
		Backend:        domain.BackendMonitor,
	}
	rec.ApplyDefaults(now)
	return rec, true
}

// airodumpESSID recovers an ESSID that may itself contain commas. The
// ID-length column says how many bytes belong to it; the trailing Key column
// is dropped otherwise.
func airodumpESSID(raw, parts []string) string {
	tail := strings.TrimLeft(strings.Join(raw[colESSID:], ","), " ")

	var essid string
	if n, err := strconv.Atoi(parts[colIDLength]); err == nil && n > 0 && n <= len(tail) {
		essid = tail[:n]
	} else if len(parts) > minAirodumpFields {
		essid = strings.TrimSpace(strings.Join(raw[colESSID:len(raw)-1], ","))
	} else {
		essid = parts[colESSID]
	}

	if strings.Trim(essid, "\x00 ") == "" {
		return domain.HiddenESSID
	}
	return essid
}

func parseSeen(s string) time.Time {
	t, err := time.ParseInLocation(domain.TimestampStyle, s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// atoiOr parses a non-negative integer, returning def otherwise.
func atoiOr(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return def
	}
	return v
}

// upsert applies the higher-power rule within a single dump.
func upsert(m map[string]domain.NetworkRecord, rec domain.NetworkRecord) {
	if cur, ok := m[rec.BSSID]; ok && !rec.Supersedes(cur) {
		return
	}
	m[rec.BSSID] = rec
}
