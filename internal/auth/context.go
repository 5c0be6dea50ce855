// internal/auth/context.go
//
// Request-scoped identity helpers.
//
// Usage
// -----
//	// Attach the identity after session validation.
//	ctx = auth.WithIdentity(ctx, id)
//
//	// Downstream guards retrieve it.
//	id, ok := auth.IdentityFromContext(ctx)
//
// An absent identity means "anonymous"; guards must treat the two-value
// miss as an unauthenticated visitor, never as an error.
package auth

import "context"

// Identity is the authenticated principal extracted from the session.
// Role and membership live in the database, not in the token, so the
// guards look them up per request.
type Identity struct {
	ID    string
	Email string
}

// identityKey is unexported to avoid context-key collisions.
type identityKey struct{}

// WithIdentity returns a new context carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext extracts the identity from ctx.  ok is false for
// anonymous requests.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	if !ok || id == nil {
		return nil, false
	}
	return id, true
}
