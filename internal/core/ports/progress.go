package ports

import "github.com/lcalzada-xor/netraptor/internal/core/domain"

// ProgressReporter receives advisory progress. Implementations must not block.
type ProgressReporter interface {
	Report(ev domain.ProgressEvent)
}

// ResourceTracker records temporary files and the active subprocess so that
// teardown can release them.
type ResourceTracker interface {
	TrackTemp(paths ...string)
	SetActive(p Process)
	ClearActive(p Process)
}
