package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
)

// Resources guarded by the Authorizer.
const (
	ResourceDrivers  = "drivers"
	ResourceTracking = "tracking"
	ResourceEarnings = "earnings"
	ResourceShifts   = "shifts"
)

// Actions guarded by the Authorizer.
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionAssign = "assign"
	ActionRate   = "rate"

	// ActionSetStatus forces a driver's status outside dispatch and shifts.
	ActionSetStatus = "set_status"
)

// Permission is a request to perform Action on Resource. OwnerID is the subject
// that owns the target record, or empty when the record has no single owner.
type Permission struct {
	Resource string
	Action   string
	OwnerID  string
}

// Authorizer decides whether a principal holds a permission.
type Authorizer interface {
	// Authorize returns nil when allowed and a PermissionDenied error otherwise.
	Authorize(ctx context.Context, principal kernel.Principal, permission Permission) error
}
