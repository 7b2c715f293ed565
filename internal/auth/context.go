// Package auth carries the authenticated request identity through context.
package auth

import "context"

// RoleAdmin marks the privileged account role: exempt from quota
// enforcement, and its draws never touch quota counters.
const RoleAdmin = "admin"

// Identity is the authenticated caller.
type Identity struct {
	UserID int64
	Role   string
}

// IsPrivileged reports whether the identity bypasses quota enforcement.
func (id Identity) IsPrivileged() bool {
	return id.Role == RoleAdmin
}

type ctxKey struct{}

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the identity placed by the auth middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
