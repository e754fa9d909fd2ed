// Package access holds the capability model shared by the RBAC graph, the
// menu resolver and the transport guards.
package access

import (
	"context"
	"fmt"
)

type Action string

const (
	ActionCreate        Action = "create"
	ActionRead          Action = "read"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionActivate      Action = "activate"
	ActionResetPassword Action = "reset_password"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionActivate, ActionResetPassword:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Capabilities are the flags a RolePermission grants on one menu item.
type Capabilities struct {
	CanCreate        bool `json:"can_create"`
	CanRead          bool `json:"can_read"`
	CanUpdate        bool `json:"can_update"`
	CanDelete        bool `json:"can_delete"`
	CanActivate      bool `json:"can_activate"`
	CanResetPassword bool `json:"can_reset_password"`
}

// Union ORs every flag. Holding more roles never removes a capability.
func (c Capabilities) Union(o Capabilities) Capabilities {
	return Capabilities{
		CanCreate:        c.CanCreate || o.CanCreate,
		CanRead:          c.CanRead || o.CanRead,
		CanUpdate:        c.CanUpdate || o.CanUpdate,
		CanDelete:        c.CanDelete || o.CanDelete,
		CanActivate:      c.CanActivate || o.CanActivate,
		CanResetPassword: c.CanResetPassword || o.CanResetPassword,
	}
}

func (c Capabilities) Any() bool {
	return c.CanCreate || c.CanRead || c.CanUpdate || c.CanDelete || c.CanActivate || c.CanResetPassword
}

func (c Capabilities) Allows(a Action) bool {
	switch a {
	case ActionCreate:
		return c.CanCreate
	case ActionRead:
		return c.CanRead
	case ActionUpdate:
		return c.CanUpdate
	case ActionDelete:
		return c.CanDelete
	case ActionActivate:
		return c.CanActivate
	case ActionResetPassword:
		return c.CanResetPassword
	}
	return false
}

// Principal is the authorized caller of a request.
type Principal struct {
	UserID      int64                   `json:"user_id"`
	EmpresaID   int64                   `json:"empresa_id"`
	Username    string                  `json:"username"`
	Permissions map[string]Capabilities `json:"permissions"`
}

// Authenticated is false for the empty principal produced for unknown or
// inactive users.
func (p *Principal) Authenticated() bool {
	return p != nil && p.UserID != 0
}

func (p *Principal) Can(resource string, a Action) bool {
	if !p.Authenticated() {
		return false
	}
	return p.Permissions[resource].Allows(a)
}

type ctxKey string

const principalKey ctxKey = "principal"

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}
