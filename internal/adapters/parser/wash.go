package parser

import (
	"bufio"
	"strings"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
)

// ParseWash parses the table printed by `wash -C`. Newer releases add a
// Vendor column before ESSID; the header row tells the two layouts apart.
func ParseWash(output string) []domain.WPSRecord {
	var out []domain.WPSRecord
	essidCol := 5

	sc := bufio.NewScanner(strings.NewReader(output))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "---") {
			continue
		}
		fields := strings.Fields(line)
		if fields[0] == "BSSID" {
			if strings.Contains(line, "Vendor") {
				essidCol = 6
			}
			continue
		}
		if len(fields) < 6 {
			continue
		}
		bssid, err := domain.NormalizeBSSID(fields[0])
		if err != nil {
			continue
		}

		essid := "Unknown"
		if len(fields) > essidCol {
			essid = strings.Join(fields[essidCol:], " ")
		}
		out = append(out, domain.WPSRecord{
			BSSID:   bssid,
			Channel: atoiOr(fields[1], 0),
			RSSI:    domain.ParseSignal(fields[2]),
			Version: fields[3],
			Locked:  strings.EqualFold(fields[4], "Yes"),
			ESSID:   essid,
		})
	}
	return out
}
