package kernel

import "context"

// Role is the coarse-grained role of an authenticated caller.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleDriver   Role = "driver"
	RoleCustomer Role = "customer"
	// RoleSystem is used by background jobs and queue workers.
	RoleSystem Role = "system"
)

// Principal is the authenticated caller of an operation.
// Subject is the identity provider's subject; for drivers it is the driver id.
type Principal struct {
	Subject string
	Role    Role
}

// SystemPrincipal identifies in-process callers such as cron jobs.
func SystemPrincipal() Principal {
	return Principal{Subject: "system", Role: RoleSystem}
}

// IsZero reports whether no principal was established.
func (p Principal) IsZero() bool {
	return p.Subject == "" && p.Role == ""
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored on ctx, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
