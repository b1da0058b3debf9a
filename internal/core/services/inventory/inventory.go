// Package inventory reconciles scan output into one record per BSSID and
// derives findings from the reconciled view.
package inventory

import (
	"sort"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
)

// Merge folds src into dst. A record replaces the existing one only when its
// power is strictly higher and parsable; replacement is whole-record.
func Merge(dst, src map[string]domain.NetworkRecord) map[string]domain.NetworkRecord {
	if dst == nil {
		dst = make(map[string]domain.NetworkRecord, len(src))
	}
	for _, bssid := range sortedKeys(src) {
		rec := src[bssid]
		if cur, ok := dst[bssid]; ok && !rec.Supersedes(cur) {
			continue
		}
		dst[bssid] = rec
	}
	return dst
}

// Reconcile merges repetitions in the order they were taken, so the earliest
// observation survives a tie.
func Reconcile(scans ...map[string]domain.NetworkRecord) map[string]domain.NetworkRecord {
	out := make(map[string]domain.NetworkRecord)
	for _, s := range scans {
		Merge(out, s)
	}
	return out
}

// Finalize back-fills the default power on records whose reading never parsed.
func Finalize(m map[string]domain.NetworkRecord) {
	for k, rec := range m {
		rec.FillPower()
		m[k] = rec
	}
}

// Sorted returns the records strongest first. Unparsable power sorts last
// and BSSID breaks ties.
func Sorted(m map[string]domain.NetworkRecord) []domain.NetworkRecord {
	out := make([]domain.NetworkRecord, 0, len(m))
	for _, rec := range m {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Power, out[j].Power
		if a.Valid != b.Valid {
			return a.Valid
		}
		if a.DBm != b.DBm {
			return a.DBm > b.DBm
		}
		return out[i].BSSID < out[j].BSSID
	})
	return out
}

// Lookup finds a record by BSSID in any accepted notation.
func Lookup(m map[string]domain.NetworkRecord, bssid string) (domain.NetworkRecord, bool) {
	key, err := domain.NormalizeBSSID(bssid)
	if err != nil {
		return domain.NetworkRecord{}, false
	}
	rec, ok := m[key]
	return rec, ok
}

func sortedKeys(m map[string]domain.NetworkRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
