package wps

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/pbkdf2"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
)

const resultLayout = "20060102_150405"

// DerivePMK computes the WPA pairwise master key for a passphrase.
func DerivePMK(passphrase, essid string) string {
	return hex.EncodeToString(pbkdf2.Key([]byte(passphrase), []byte(essid), 4096, 32, sha1.New))
}

type resultFile struct {
	BSSID      string  `json:"bssid"`
	PIN        string  `json:"pin"`
	Passphrase string  `json:"passphrase"`
	Timestamp  string  `json:"timestamp"`
	Duration   float64 `json:"duration"`
	PMK        string  `json:"pmk,omitempty"`
}

// ResultPath is where the result of an attack started at t is written.
func ResultPath(dir string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("wps_attack_results_%s.json", t.Format(resultLayout)))
}

// writeResult persists r, replacing any earlier write for the same run.
func writeResult(path string, r domain.AttackResult) error {
	data, err := json.MarshalIndent(resultFile{
		BSSID:      r.BSSID,
		PIN:        r.PIN,
		Passphrase: r.Passphrase,
		Timestamp:  r.StartedAt.Format(time.RFC3339),
		Duration:   r.Duration.Seconds(),
		PMK:        r.PMK,
	}, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
