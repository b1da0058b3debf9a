package domain

import "errors"

// Domain Errors
var (
	ErrNotRoot         = errors.New("root privileges are required")
	ErrNoInterface     = errors.New("no wireless interface available")
	ErrNoFeature       = errors.New("no feature flag specified")
	ErrInvalidBSSID    = errors.New("invalid BSSID")
	ErrChannelRequired = errors.New("a target channel is required")
	ErrToolMissing     = errors.New("required tool is not installed")
	ErrTimeout         = errors.New("command timed out")
	ErrCaptureMissing  = errors.New("capture file was not created")
	ErrNoHandshake     = errors.New("no handshake found in capture")
)
