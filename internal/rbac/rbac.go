package rbac

import (
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	rbacDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/rbac"
)

const (
	maxRoleNameLength    = 100
	maxDescriptionLength = 500
	maxMenuNameLength    = 100
	maxResourceKeyLength = 150
)

var (
	ErrRoleNotFound       = internal.NewNotFoundError("Role not found", internal.ErrCodeNotFound)
	ErrPermissionNotFound = internal.NewNotFoundError("Permission not found", internal.ErrCodeNotFound)
	ErrMenuItemNotFound   = internal.NewNotFoundError("Menu item not found", internal.ErrCodeNotFound)
	ErrUserNotFound       = internal.NewNotFoundError("User not found", internal.ErrCodeNotFound)
	ErrGrantNotFound      = internal.NewNotFoundError("Grant not found", internal.ErrCodeNotFound)
	ErrAssignmentNotFound = internal.NewNotFoundError("Role assignment not found", internal.ErrCodeNotFound)

	ErrDuplicateRole       = internal.NewConflictError("Role name already exists", internal.ErrCodeDuplicate)
	ErrDuplicatePermission = internal.NewConflictError("Permission already exists for this resource and action", internal.ErrCodeDuplicate)
	ErrDuplicateMenuItem   = internal.NewConflictError("Menu item resource key already exists", internal.ErrCodeDuplicate)
	ErrAlreadyAssigned     = internal.NewConflictError("Role already assigned to user", internal.ErrCodeAlreadyAssigned)
	ErrMenuItemHasChildren = internal.NewConflictError("Menu item has children; delete or move them first", internal.ErrCodeHasChildren)
	ErrMenuItemCycle       = internal.NewConflictError("Menu item cannot be placed under itself or its descendants", internal.ErrCodeCycle)
)

type Role struct {
	ID          int64     `json:"id"`
	EmpresaID   int64     `json:"empresa_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func RoleFromDataModel(r *rbacDatamodel.Role) *Role {
	return &Role{
		ID:          r.ID,
		EmpresaID:   r.EmpresaID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}

type Permission struct {
	ID          int64  `json:"id"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

func PermissionFromDataModel(p *rbacDatamodel.Permission) *Permission {
	return &Permission{
		ID:          p.ID,
		Resource:    p.Resource,
		Action:      p.Action,
		Description: p.Description,
	}
}

type MenuItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ResourceKey string `json:"resource_key"`
	Icon        string `json:"icon,omitempty"`
	URL         string `json:"url,omitempty"`
	Controller  string `json:"controller,omitempty"`
	Action      string `json:"action,omitempty"`
	ParentID    *int64 `json:"parent_id,omitempty"`
	Order       int    `json:"order"`
	IsActive    bool   `json:"is_active"`
}

func MenuItemFromDataModel(m *rbacDatamodel.MenuItem) *MenuItem {
	return &MenuItem{
		ID:          m.ID,
		Name:        m.Name,
		ResourceKey: m.ResourceKey,
		Icon:        m.Icon,
		URL:         m.URL,
		Controller:  m.Controller,
		Action:      m.Action,
		ParentID:    m.ParentID,
		Order:       m.Order,
		IsActive:    m.IsActive,
	}
}

// Grant is a RolePermission as seen by API callers.
type Grant struct {
	RoleID       int64  `json:"role_id"`
	MenuItemID   int64  `json:"menu_item_id"`
	PermissionID *int64 `json:"permission_id,omitempty"`
	access.Capabilities
}

func GrantFromDataModel(rp *rbacDatamodel.RolePermission) *Grant {
	return &Grant{
		RoleID:       rp.RoleID,
		MenuItemID:   rp.MenuItemID,
		PermissionID: rp.PermissionID,
		Capabilities: rp.Capabilities(),
	}
}
