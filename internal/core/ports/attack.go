package ports

import (
	"context"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
)

// Deauthenticator sends deauthentication frames and tests injection.
type Deauthenticator interface {
	Deauth(ctx context.Context, cfg domain.DeauthConfig) domain.DeauthResult
	TestInjection(ctx context.Context, iface string) domain.InjectionResult
}

// HandshakeCapturer runs the multi-phase handshake capture.
type HandshakeCapturer interface {
	Capture(ctx context.Context, cfg domain.HandshakeConfig) (*domain.CaptureArtifact, error)
}

// WPSAttacker runs a WPS PIN brute force.
type WPSAttacker interface {
	Attack(ctx context.Context, cfg domain.WPSAttackConfig) (domain.AttackResult, error)
}

// Cracker runs a dictionary attack against a capture.
type Cracker interface {
	Crack(ctx context.Context, file, wordlist string) (domain.CrackResult, error)
}
