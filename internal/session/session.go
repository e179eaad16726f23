// Package session persists the client's "current user" pointer so a
// session survives restarts. The local variant keeps it in the metadata
// table of the catalog database; the remote variant keeps a signed token
// in a file (see internal/auth).
package session

import (
	"context"

	"filedeck/internal/models"
)

// Store is the durable session pointer. At most one user is current per
// client instance.
type Store interface {
	// Current returns the session's user, or common.ErrNotAuthenticated
	// when no session is active.
	Current(ctx context.Context) (*models.User, error)

	// Set makes user the current session.
	Set(ctx context.Context, user *models.User) error

	// Clear ends the session. Clearing an absent session is a no-op.
	Clear(ctx context.Context) error
}
