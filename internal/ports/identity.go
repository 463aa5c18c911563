package ports

import "context"

// Identity is an authenticated account as reported by the identity service.
type Identity struct {
	ID    string
	Email string
}

type IdentityProvider interface {
	// CurrentIdentity returns the identity bound to ctx, if any.
	CurrentIdentity(ctx context.Context) (Identity, bool)
}

type IdentityNotifier interface {
	// OnIdentityChange registers fn for sign-in, sign-out and account
	// switches. A nil argument means signed out.
	OnIdentityChange(fn func(*Identity)) (unsubscribe func())
}
