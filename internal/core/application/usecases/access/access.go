// Package access checks the caller of a use case against the Authorizer.
package access

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// Check authorizes the principal carried by ctx. A context without a principal
// is denied before the authorizer is consulted.
func Check(ctx context.Context, authorizer ports.Authorizer, resource, action, ownerID string) error {
	principal, ok := kernel.PrincipalFromContext(ctx)
	if !ok || principal.IsZero() {
		return errs.NewPermissionDeniedError("", resource, action)
	}

	return authorizer.Authorize(ctx, principal, ports.Permission{
		Resource: resource,
		Action:   action,
		OwnerID:  ownerID,
	})
}

// AllowAll grants every permission to any principal. It backs trusted in-process
// callers and tests.
type AllowAll struct{}

// Authorize always returns nil.
func (AllowAll) Authorize(context.Context, kernel.Principal, ports.Permission) error {
	return nil
}

// CheckRole authorizes the principal carried by ctx as if it owned the target.
// It lets a use case reject callers whose role can never hold the permission
// before it loads the record that names the real owner.
func CheckRole(ctx context.Context, authorizer ports.Authorizer, resource, action string) error {
	principal, ok := kernel.PrincipalFromContext(ctx)
	if !ok || principal.IsZero() {
		return errs.NewPermissionDeniedError("", resource, action)
	}
	return Check(ctx, authorizer, resource, action, principal.Subject)
}
