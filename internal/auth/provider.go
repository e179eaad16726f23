// Package auth is the authentication collaborator of the catalog. It owns
// everything the catalog core deliberately does not: signed session
// tokens, anonymous identities, the identity-change stream, and credential
// verification for the remote variant.
package auth

import "context"

// Identity is the authenticated principal as the provider sees it. The
// zero value means "signed out" on the change stream.
type Identity struct {
	UserID    string
	Email     string
	Name      string
	Anonymous bool
}

// Provider exposes the current identity and anonymous sign-in, plus a
// notification stream for identity changes.
type Provider interface {
	// CurrentIdentity returns the active identity, or
	// common.ErrNotAuthenticated when nobody is signed in.
	CurrentIdentity(ctx context.Context) (*Identity, error)

	// SignInAnonymously creates and activates a throwaway identity.
	SignInAnonymously(ctx context.Context) (*Identity, error)

	// Changes returns a channel receiving every identity change after the
	// call. A zero Identity signals sign-out. Slow receivers may miss
	// updates; the channel is never closed.
	Changes() <-chan Identity
}

// CredentialStore verifies user credentials. Wired only into the remote
// variant; the local variant accepts passwords without checking them.
type CredentialStore interface {
	// Save records the credentials for email, replacing any previous ones.
	Save(ctx context.Context, email, password string) error

	// Verify checks password against the stored credentials, returning
	// common.ErrInvalidCredentials on mismatch or when none exist.
	Verify(ctx context.Context, email, password string) error
}
