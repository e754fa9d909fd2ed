package rbac

import (
	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	"github.com/frahmantamala/vaccination-registry/internal/core/common/validation"
)

type CreateRoleDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (d CreateRoleDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("name", d.Name).Required().MaxLength(maxRoleNameLength)
	validator.Field("description", d.Description).MaxLength(maxDescriptionLength)
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

type CreatePermissionDTO struct {
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

func (d CreatePermissionDTO) Validate() error {
	if err := validation.ValidateCode("resource", d.Resource, maxResourceKeyLength); err != nil {
		return err
	}
	if _, err := access.ParseAction(d.Action); err != nil {
		return internal.NewValidationFieldError("action", err.Error(), internal.ErrCodeValidationFailed)
	}
	return nil
}

type CreateMenuItemDTO struct {
	Name        string `json:"name"`
	ResourceKey string `json:"resource_key"`
	Icon        string `json:"icon"`
	URL         string `json:"url"`
	Controller  string `json:"controller"`
	Action      string `json:"action"`
	ParentID    *int64 `json:"parent_id"`
	Order       int    `json:"order"`
}

func (d CreateMenuItemDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("name", d.Name).Required().MaxLength(maxMenuNameLength)
	validator.Field("url", d.URL).MaxLength(255)
	if err := validator.Validate(); err != nil {
		return err
	}
	if err := validation.ValidateCode("resource_key", d.ResourceKey, maxResourceKeyLength); err != nil {
		return err
	}
	return nil
}

// MoveMenuItemDTO re-parents a menu item; a nil parent makes it a root.
type MoveMenuItemDTO struct {
	ParentID *int64 `json:"parent_id"`
	Order    *int   `json:"order"`
}

type GrantDTO struct {
	MenuItemID   int64  `json:"menu_item_id"`
	PermissionID *int64 `json:"permission_id"`
	access.Capabilities
}

func (d GrantDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("menu_item_id", d.MenuItemID).Required()
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

type AssignRoleDTO struct {
	RoleID int64 `json:"role_id"`
}

type RolesResponse struct {
	Roles []*Role `json:"roles"`
}

type PermissionsResponse struct {
	Permissions []*Permission `json:"permissions"`
}

type MenuItemsResponse struct {
	MenuItems []*MenuItem `json:"menu_items"`
}

type GrantsResponse struct {
	Grants []*Grant `json:"grants"`
}

type UserRolesResponse struct {
	UserID  int64   `json:"user_id"`
	RoleIDs []int64 `json:"role_ids"`
}

type CreatedResponse struct {
	ID int64 `json:"id"`
}
