package auth

import (
	"context"
	"slices"
)

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	UserID      string
	IsAdmin     bool
	Permissions []string
}

// Has reports whether the principal's role grants permission.
func (p *Principal) Has(permission string) bool {
	return slices.Contains(p.Permissions, permission)
}

// CanActOn reports whether the principal may modify a resource owned by ownerID.
func (p *Principal) CanActOn(ownerID string) bool {
	return p.IsAdmin || p.UserID == ownerID
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
