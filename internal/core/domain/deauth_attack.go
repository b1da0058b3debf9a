package domain

import (
	"fmt"
	"time"
)

// Default parameters for deauthentication runs.
const (
	DefaultDeauthCount   = 10
	DeauthTimeout        = 30 * time.Second
	InjectionTestTimeout = 15 * time.Second
)

// DeauthConfig defines a broadcast deauthentication against one AP.
type DeauthConfig struct {
	// TargetBSSID is the MAC address of the Access Point.
	TargetBSSID string `json:"target_bssid"`

	// Channel is tuned best-effort before sending; 0 leaves the radio alone.
	Channel int `json:"channel"`

	// PacketCount is the number of deauth frames requested from the tool.
	PacketCount int `json:"packet_count"`

	Interface string `json:"interface"`
}

// Validate evaluates the configuration against domain rules.
func (c *DeauthConfig) Validate() error {
	if !IsValidMAC(c.TargetBSSID) {
		return fmt.Errorf("%w: %s", ErrInvalidBSSID, c.TargetBSSID)
	}
	if c.PacketCount <= 0 {
		c.PacketCount = DefaultDeauthCount
	}
	if c.Channel < 0 || c.Channel > 196 {
		return fmt.Errorf("invalid WiFi channel: %d", c.Channel)
	}
	if c.Interface != "" && !IsValidInterface(c.Interface) {
		return fmt.Errorf("invalid interface name: %s", c.Interface)
	}
	return nil
}

// DeauthResult is the outcome of one deauthentication call.
type DeauthResult struct {
	BSSID       string    `json:"bssid"`
	PacketCount int       `json:"packet_count"`
	Success     bool      `json:"success"`
	Diagnostic  string    `json:"diagnostic,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// InjectionResult is the outcome of a packet injection self-test.
type InjectionResult struct {
	Interface string `json:"interface"`
	Working   bool   `json:"working"`
	Output    string `json:"output,omitempty"`
}
