// Package authz implements ports.Authorizer with a Casbin role model whose
// policies live in the database.
//
// A policy grants a role an action on a resource with a scope: "any" applies
// to every record, "own" only to records whose owner is the caller.
package authz

import (
	"context"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	casbinTableName = "casbin_rule"

	ScopeAny = "any"
	ScopeOwn = "own"
)

const rbacModel = `
[request_definition]
r = sub, role, obj, act, owner

[policy_definition]
p = role, obj, act, scope

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.role == p.role && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act) && (p.scope == "any" || (p.scope == "own" && r.owner != "" && r.owner == r.sub))
`

// DefaultPolicies are installed when the policy table is empty.
func DefaultPolicies() [][]string {
	admin, system := string(kernel.RoleAdmin), string(kernel.RoleSystem)
	drv, customer := string(kernel.RoleDriver), string(kernel.RoleCustomer)

	return [][]string{
		{admin, "*", "*", ScopeAny},
		{system, "*", "*", ScopeAny},

		{drv, ports.ResourceDrivers, ports.ActionRead, ScopeOwn},
		{drv, ports.ResourceDrivers, ports.ActionUpdate, ScopeOwn},
		{drv, ports.ResourceTracking, ports.ActionRead, ScopeAny},
		{drv, ports.ResourceTracking, ports.ActionUpdate, ScopeOwn},
		{drv, ports.ResourceEarnings, ports.ActionRead, ScopeOwn},
		{drv, ports.ResourceShifts, ports.ActionRead, ScopeOwn},
		{drv, ports.ResourceShifts, ports.ActionUpdate, ScopeOwn},

		{customer, ports.ResourceTracking, ports.ActionRead, ScopeAny},
		{customer, ports.ResourceDrivers, ports.ActionRead, ScopeAny},
		{customer, ports.ResourceDrivers, ports.ActionRate, ScopeAny},
	}
}

// CasbinAuthorizer enforces the policies stored in casbin_rule.
type CasbinAuthorizer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewCasbinAuthorizer loads the policies from db, seeding DefaultPolicies on
// first use.
func NewCasbinAuthorizer(db *gorm.DB) (*CasbinAuthorizer, error) {
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}

	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.EnableAutoSave(true)

	if err = enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}

	policies, err := enforcer.GetPolicy()
	if err != nil {
		return nil, fmt.Errorf("read authz policy failed: %w", err)
	}
	if len(policies) == 0 {
		if _, err = enforcer.AddPolicies(DefaultPolicies()); err != nil {
			return nil, fmt.Errorf("seed authz policy failed: %w", err)
		}
	}

	return &CasbinAuthorizer{enforcer: enforcer}, nil
}

// Authorize implements ports.Authorizer.
func (a *CasbinAuthorizer) Authorize(_ context.Context, principal kernel.Principal, permission ports.Permission) error {
	ok, err := a.enforcer.Enforce(
		principal.Subject,
		string(principal.Role),
		permission.Resource,
		permission.Action,
		permission.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("authz enforce failed: %w", err)
	}
	if !ok {
		return errs.NewPermissionDeniedError(principal.Subject, permission.Resource, permission.Action)
	}
	return nil
}

// Grant adds a policy. It reports false when the policy already existed.
func (a *CasbinAuthorizer) Grant(role kernel.Role, resource, action, scope string) (bool, error) {
	return a.enforcer.AddPolicy(string(role), resource, action, scope)
}

// Revoke removes a policy. It reports false when there was nothing to remove.
func (a *CasbinAuthorizer) Revoke(role kernel.Role, resource, action, scope string) (bool, error) {
	return a.enforcer.RemovePolicy(string(role), resource, action, scope)
}
