package ports

import (
	"context"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
)

// Storage persists the results of a session.
type Storage interface {
	// SaveSession records the session header from the report.
	SaveSession(ctx context.Context, info domain.ScanInfo) error
	SaveNetworks(ctx context.Context, sessionID string, networks []domain.NetworkRecord) error
	SaveWPS(ctx context.Context, sessionID string, records []domain.WPSRecord) error
	SaveCapture(ctx context.Context, sessionID string, artifact domain.CaptureArtifact) error
	SaveAttackResult(ctx context.Context, sessionID string, result domain.AttackResult) error

	// NetworksForSession returns the stored inventory of a session.
	NetworksForSession(ctx context.Context, sessionID string) ([]domain.NetworkRecord, error)
	// Sessions lists stored sessions, newest first.
	Sessions(ctx context.Context) ([]domain.ScanInfo, error)

	Close() error
}

// ReportWriter renders a report to a file and returns its path.
type ReportWriter interface {
	Format() string
	Write(report domain.Report, dir, stamp string) (string, error)
}
