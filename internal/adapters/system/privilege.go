package system

import (
	"os"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
)

var geteuid = os.Geteuid

// RequireRoot returns domain.ErrNotRoot unless the effective UID is 0.
func RequireRoot() error {
	if geteuid() != 0 {
		return domain.ErrNotRoot
	}
	return nil
}
