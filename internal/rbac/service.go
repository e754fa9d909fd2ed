package rbac

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/vaccination-registry/internal"
	rbacDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/rbac"
	"github.com/frahmantamala/vaccination-registry/internal/core/events"
	"github.com/frahmantamala/vaccination-registry/internal/tenant"
	"gorm.io/gorm"
)

// Repository is the storage contract of the RBAC graph. Getters return nil,
// nil when the row does not exist.
type Repository interface {
	Transaction(ctx context.Context, fn func(repo Repository) error) error

	GetRole(ctx context.Context, id int64) (*rbacDatamodel.Role, error)
	GetRoleByName(ctx context.Context, empresaID int64, name string) (*rbacDatamodel.Role, error)
	ListRoles(ctx context.Context, empresaID int64) ([]*rbacDatamodel.Role, error)
	CreateRole(ctx context.Context, role *rbacDatamodel.Role) error
	DeleteRole(ctx context.Context, id int64) error

	GetPermission(ctx context.Context, id int64) (*rbacDatamodel.Permission, error)
	GetPermissionByKey(ctx context.Context, empresaID int64, resource, action string) (*rbacDatamodel.Permission, error)
	ListPermissions(ctx context.Context, empresaID int64) ([]*rbacDatamodel.Permission, error)
	CreatePermission(ctx context.Context, p *rbacDatamodel.Permission) error
	DeletePermission(ctx context.Context, id int64) error

	GetMenuItem(ctx context.Context, id int64) (*rbacDatamodel.MenuItem, error)
	GetMenuItemByKey(ctx context.Context, empresaID int64, resourceKey string) (*rbacDatamodel.MenuItem, error)
	ListMenuItems(ctx context.Context, empresaID int64) ([]*rbacDatamodel.MenuItem, error)
	CountChildren(ctx context.Context, id int64) (int64, error)
	CreateMenuItem(ctx context.Context, item *rbacDatamodel.MenuItem) error
	UpdateMenuItemPlacement(ctx context.Context, id int64, parentID *int64, order int) error
	DeleteMenuItem(ctx context.Context, id int64) error

	GetUser(ctx context.Context, id int64) (*rbacDatamodel.User, error)

	GetGrant(ctx context.Context, roleID, menuItemID int64) (*rbacDatamodel.RolePermission, error)
	UpsertGrant(ctx context.Context, grant *rbacDatamodel.RolePermission) error
	DeleteGrant(ctx context.Context, roleID, menuItemID int64) error
	ListGrantsByRole(ctx context.Context, roleID int64) ([]*rbacDatamodel.RolePermission, error)

	GetUserRole(ctx context.Context, userID, roleID int64) (*rbacDatamodel.UserRole, error)
	CreateUserRole(ctx context.Context, ur *rbacDatamodel.UserRole) error
	DeleteUserRole(ctx context.Context, userID, roleID int64) error
	ListRoleIDsByUser(ctx context.Context, userID int64) ([]int64, error)
}

type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) CreateRole(ctx context.Context, empresaID int64, dto CreateRoleDTO) (int64, error) {
	if err := dto.Validate(); err != nil {
		return 0, err
	}

	existing, err := s.repo.GetRoleByName(ctx, empresaID, dto.Name)
	if err != nil {
		return 0, s.storeError("get role by name", err)
	}
	if existing != nil {
		return 0, ErrDuplicateRole
	}

	role := &rbacDatamodel.Role{EmpresaID: empresaID, Name: dto.Name, Description: dto.Description}
	if err := s.repo.CreateRole(ctx, role); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, ErrDuplicateRole
		}
		return 0, s.storeError("create role", err)
	}

	s.logger.Info("role created", "role_id", role.ID, "empresa_id", empresaID, "name", role.Name)
	s.accessChanged(ctx, empresaID, "role.created")
	return role.ID, nil
}

// DeleteRole removes the role together with its grants and assignments.
func (s *Service) DeleteRole(ctx context.Context, empresaID, roleID int64) error {
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		role, err := repo.GetRole(ctx, roleID)
		if err != nil {
			return s.storeError("get role", err)
		}
		if role == nil {
			return ErrRoleNotFound
		}
		if err := tenant.Guard(empresaID, role); err != nil {
			return err
		}
		if err := repo.DeleteRole(ctx, roleID); err != nil {
			return s.storeError("delete role", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("role deleted", "role_id", roleID, "empresa_id", empresaID)
	s.accessChanged(ctx, empresaID, "role.deleted")
	return nil
}

func (s *Service) ListRoles(ctx context.Context, empresaID int64) ([]*Role, error) {
	roles, err := s.repo.ListRoles(ctx, empresaID)
	if err != nil {
		return nil, s.storeError("list roles", err)
	}
	out := make([]*Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, RoleFromDataModel(r))
	}
	return out, nil
}

func (s *Service) CreatePermission(ctx context.Context, empresaID int64, dto CreatePermissionDTO) (int64, error) {
	if err := dto.Validate(); err != nil {
		return 0, err
	}

	existing, err := s.repo.GetPermissionByKey(ctx, empresaID, dto.Resource, dto.Action)
	if err != nil {
		return 0, s.storeError("get permission", err)
	}
	if existing != nil {
		return 0, ErrDuplicatePermission
	}

	p := &rbacDatamodel.Permission{
		EmpresaID:   empresaID,
		Resource:    dto.Resource,
		Action:      dto.Action,
		Description: dto.Description,
	}
	if err := s.repo.CreatePermission(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, ErrDuplicatePermission
		}
		return 0, s.storeError("create permission", err)
	}

	s.logger.Info("permission created", "permission_id", p.ID, "resource", p.Resource, "action", p.Action)
	return p.ID, nil
}

// DeletePermission nulls the permission reference of every grant that points
// at it; the grants themselves survive.
func (s *Service) DeletePermission(ctx context.Context, empresaID, permissionID int64) error {
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		p, err := repo.GetPermission(ctx, permissionID)
		if err != nil {
			return s.storeError("get permission", err)
		}
		if p == nil {
			return ErrPermissionNotFound
		}
		if err := tenant.Guard(empresaID, p); err != nil {
			return err
		}
		if err := repo.DeletePermission(ctx, permissionID); err != nil {
			return s.storeError("delete permission", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.accessChanged(ctx, empresaID, "permission.deleted")
	return nil
}

func (s *Service) ListPermissions(ctx context.Context, empresaID int64) ([]*Permission, error) {
	perms, err := s.repo.ListPermissions(ctx, empresaID)
	if err != nil {
		return nil, s.storeError("list permissions", err)
	}
	out := make([]*Permission, 0, len(perms))
	for _, p := range perms {
		out = append(out, PermissionFromDataModel(p))
	}
	return out, nil
}

func (s *Service) CreateMenuItem(ctx context.Context, empresaID int64, dto CreateMenuItemDTO) (int64, error) {
	if err := dto.Validate(); err != nil {
		return 0, err
	}

	item := &rbacDatamodel.MenuItem{
		EmpresaID:   empresaID,
		Name:        dto.Name,
		ResourceKey: dto.ResourceKey,
		Icon:        dto.Icon,
		URL:         dto.URL,
		Controller:  dto.Controller,
		Action:      dto.Action,
		ParentID:    dto.ParentID,
		Order:       dto.Order,
		IsActive:    true,
	}

	err := s.repo.Transaction(ctx, func(repo Repository) error {
		if dto.ParentID != nil {
			parent, err := repo.GetMenuItem(ctx, *dto.ParentID)
			if err != nil {
				return s.storeError("get parent menu item", err)
			}
			if parent == nil {
				return ErrMenuItemNotFound
			}
			if err := tenant.Guard(empresaID, parent); err != nil {
				return err
			}
		}

		existing, err := repo.GetMenuItemByKey(ctx, empresaID, dto.ResourceKey)
		if err != nil {
			return s.storeError("get menu item by key", err)
		}
		if existing != nil {
			return ErrDuplicateMenuItem
		}

		if err := repo.CreateMenuItem(ctx, item); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateMenuItem
			}
			return s.storeError("create menu item", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("menu item created", "menu_item_id", item.ID, "resource_key", item.ResourceKey, "empresa_id", empresaID)
	s.accessChanged(ctx, empresaID, "menu_item.created")
	return item.ID, nil
}

// MoveMenuItem re-parents an item. The new parent must live in the same
// tenant and must not be the item itself or one of its descendants.
func (s *Service) MoveMenuItem(ctx context.Context, empresaID, id int64, dto MoveMenuItemDTO) error {
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		item, err := repo.GetMenuItem(ctx, id)
		if err != nil {
			return s.storeError("get menu item", err)
		}
		if item == nil {
			return ErrMenuItemNotFound
		}
		if err := tenant.Guard(empresaID, item); err != nil {
			return err
		}

		if dto.ParentID != nil {
			parent, err := repo.GetMenuItem(ctx, *dto.ParentID)
			if err != nil {
				return s.storeError("get parent menu item", err)
			}
			if parent == nil {
				return ErrMenuItemNotFound
			}
			if err := tenant.Guard(empresaID, parent); err != nil {
				return err
			}

			items, err := repo.ListMenuItems(ctx, empresaID)
			if err != nil {
				return s.storeError("list menu items", err)
			}
			if createsCycle(items, id, *dto.ParentID) {
				return ErrMenuItemCycle
			}
		}

		order := item.Order
		if dto.Order != nil {
			order = *dto.Order
		}
		if err := repo.UpdateMenuItemPlacement(ctx, id, dto.ParentID, order); err != nil {
			return s.storeError("move menu item", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.accessChanged(ctx, empresaID, "menu_item.moved")
	return nil
}

// createsCycle walks up from newParentID and reports whether id is reached.
func createsCycle(items []*rbacDatamodel.MenuItem, id, newParentID int64) bool {
	parents := make(map[int64]*int64, len(items))
	for _, it := range items {
		parents[it.ID] = it.ParentID
	}

	seen := make(map[int64]bool, len(items))
	for cur := &newParentID; cur != nil; cur = parents[*cur] {
		if *cur == id || seen[*cur] {
			return true
		}
		seen[*cur] = true
	}
	return false
}

// DeleteMenuItem is restricted while children exist. It removes the item's
// grants and nothing else.
func (s *Service) DeleteMenuItem(ctx context.Context, empresaID, id int64) error {
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		item, err := repo.GetMenuItem(ctx, id)
		if err != nil {
			return s.storeError("get menu item", err)
		}
		if item == nil {
			return ErrMenuItemNotFound
		}
		if err := tenant.Guard(empresaID, item); err != nil {
			return err
		}

		children, err := repo.CountChildren(ctx, id)
		if err != nil {
			return s.storeError("count menu item children", err)
		}
		if children > 0 {
			return ErrMenuItemHasChildren.WithDetails(map[string]int64{"children": children})
		}

		if err := repo.DeleteMenuItem(ctx, id); err != nil {
			return s.storeError("delete menu item", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("menu item deleted", "menu_item_id", id, "empresa_id", empresaID)
	s.accessChanged(ctx, empresaID, "menu_item.deleted")
	return nil
}

func (s *Service) ListMenuItems(ctx context.Context, empresaID int64) ([]*MenuItem, error) {
	items, err := s.repo.ListMenuItems(ctx, empresaID)
	if err != nil {
		return nil, s.storeError("list menu items", err)
	}
	out := make([]*MenuItem, 0, len(items))
	for _, it := range items {
		out = append(out, MenuItemFromDataModel(it))
	}
	return out, nil
}

// GrantPermission upserts the flags of (role, menu item). Granting the same
// flags twice leaves a single identical row.
func (s *Service) GrantPermission(ctx context.Context, empresaID, roleID int64, dto GrantDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	err := s.repo.Transaction(ctx, func(repo Repository) error {
		role, err := repo.GetRole(ctx, roleID)
		if err != nil {
			return s.storeError("get role", err)
		}
		if role == nil {
			return ErrRoleNotFound
		}

		item, err := repo.GetMenuItem(ctx, dto.MenuItemID)
		if err != nil {
			return s.storeError("get menu item", err)
		}
		if item == nil {
			return ErrMenuItemNotFound
		}

		if err := tenant.Guard(empresaID, role, item); err != nil {
			return err
		}

		if dto.PermissionID != nil {
			p, err := repo.GetPermission(ctx, *dto.PermissionID)
			if err != nil {
				return s.storeError("get permission", err)
			}
			if p == nil {
				return ErrPermissionNotFound
			}
			if err := tenant.Guard(empresaID, p); err != nil {
				return err
			}
		}

		grant := &rbacDatamodel.RolePermission{
			RoleID:       roleID,
			MenuItemID:   dto.MenuItemID,
			PermissionID: dto.PermissionID,
			EmpresaID:    role.EmpresaID,
		}
		grant.SetCapabilities(dto.Capabilities)

		if err := repo.UpsertGrant(ctx, grant); err != nil {
			return s.storeError("upsert grant", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("permission granted",
		"role_id", roleID,
		"menu_item_id", dto.MenuItemID,
		"empresa_id", empresaID)
	s.accessChanged(ctx, empresaID, "grant.upserted")
	return nil
}

func (s *Service) RevokePermission(ctx context.Context, empresaID, roleID, menuItemID int64) error {
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		grant, err := repo.GetGrant(ctx, roleID, menuItemID)
		if err != nil {
			return s.storeError("get grant", err)
		}
		if grant == nil {
			return ErrGrantNotFound
		}
		if err := tenant.Guard(empresaID, grant); err != nil {
			return err
		}
		if err := repo.DeleteGrant(ctx, roleID, menuItemID); err != nil {
			return s.storeError("delete grant", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.accessChanged(ctx, empresaID, "grant.revoked")
	return nil
}

func (s *Service) ListGrants(ctx context.Context, empresaID, roleID int64) ([]*Grant, error) {
	role, err := s.repo.GetRole(ctx, roleID)
	if err != nil {
		return nil, s.storeError("get role", err)
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}
	if err := tenant.Guard(empresaID, role); err != nil {
		return nil, err
	}

	grants, err := s.repo.ListGrantsByRole(ctx, roleID)
	if err != nil {
		return nil, s.storeError("list grants", err)
	}
	out := make([]*Grant, 0, len(grants))
	for _, g := range grants {
		out = append(out, GrantFromDataModel(g))
	}
	return out, nil
}

// AssignRole links a user to a role of the same tenant.
func (s *Service) AssignRole(ctx context.Context, empresaID, userID, roleID int64) error {
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		u, err := repo.GetUser(ctx, userID)
		if err != nil {
			return s.storeError("get user", err)
		}
		if u == nil {
			return ErrUserNotFound
		}
		role, err := repo.GetRole(ctx, roleID)
		if err != nil {
			return s.storeError("get role", err)
		}
		if role == nil {
			return ErrRoleNotFound
		}

		if err := tenant.CheckTenant(u.EmpresaID, role.EmpresaID); err != nil {
			return err
		}
		if err := tenant.Guard(empresaID, u, role); err != nil {
			return err
		}

		existing, err := repo.GetUserRole(ctx, userID, roleID)
		if err != nil {
			return s.storeError("get user role", err)
		}
		if existing != nil {
			return ErrAlreadyAssigned
		}

		ur := &rbacDatamodel.UserRole{UserID: userID, RoleID: roleID, EmpresaID: u.EmpresaID}
		if err := repo.CreateUserRole(ctx, ur); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyAssigned
			}
			return s.storeError("create user role", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("role assigned", "user_id", userID, "role_id", roleID, "empresa_id", empresaID)
	s.accessChanged(ctx, empresaID, "role.assigned")
	return nil
}

func (s *Service) UnassignRole(ctx context.Context, empresaID, userID, roleID int64) error {
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		ur, err := repo.GetUserRole(ctx, userID, roleID)
		if err != nil {
			return s.storeError("get user role", err)
		}
		if ur == nil {
			return ErrAssignmentNotFound
		}
		if err := tenant.Guard(empresaID, ur); err != nil {
			return err
		}
		if err := repo.DeleteUserRole(ctx, userID, roleID); err != nil {
			return s.storeError("delete user role", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("role unassigned", "user_id", userID, "role_id", roleID, "empresa_id", empresaID)
	s.accessChanged(ctx, empresaID, "role.unassigned")
	return nil
}

func (s *Service) ListUserRoles(ctx context.Context, empresaID, userID int64) ([]int64, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, s.storeError("get user", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if err := tenant.Guard(empresaID, u); err != nil {
		return nil, err
	}

	ids, err := s.repo.ListRoleIDsByUser(ctx, userID)
	if err != nil {
		return nil, s.storeError("list user roles", err)
	}
	return ids, nil
}

func (s *Service) accessChanged(ctx context.Context, empresaID int64, reason string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSync(ctx, events.NewAccessChangedEvent(empresaID, reason)); err != nil {
		s.logger.Error("failed to publish access change", "empresa_id", empresaID, "reason", reason, "error", err)
	}
}

func (s *Service) storeError(op string, err error) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	s.logger.Error("rbac store failure", "op", op, "error", err)
	return internal.NewDependencyError("rbac store unavailable", err)
}
