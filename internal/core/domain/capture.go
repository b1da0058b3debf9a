package domain

import "time"

// HandshakeTimeout is the default capture window for a handshake run.
const HandshakeTimeout = 60 * time.Second

// HandshakeConfig targets one AP for handshake capture.
type HandshakeConfig struct {
	TargetBSSID string        `json:"target_bssid"`
	Channel     int           `json:"channel"`
	Interface   string        `json:"interface"`
	Timeout     time.Duration `json:"timeout"`
	OutputDir   string        `json:"output_dir,omitempty"`
}

// CaptureArtifact references a capture file holding a verified handshake.
type CaptureArtifact struct {
	BSSID     string    `json:"bssid"`
	File      string    `json:"file"`
	Timestamp time.Time `json:"timestamp"`

	// EAPOLFrames is informational; verification is done by the checker tool.
	EAPOLFrames int `json:"eapol_frames"`
}

// CrackResult is the outcome of a dictionary attack against a capture.
type CrackResult struct {
	File     string `json:"file"`
	Wordlist string `json:"wordlist"`
	Found    bool   `json:"found"`
	Key      string `json:"key,omitempty"`
}
