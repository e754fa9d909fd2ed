package postgres

import (
	"context"
	"errors"

	rbacDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/rbac"
	"github.com/frahmantamala/vaccination-registry/internal/rbac"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RBACRepository struct {
	db *gorm.DB
}

func NewRBACRepository(db *gorm.DB) rbac.Repository {
	return &RBACRepository{db: db}
}

func (r *RBACRepository) Transaction(ctx context.Context, fn func(repo rbac.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&RBACRepository{db: tx})
	})
}

func first[T any](q *gorm.DB) (*T, error) {
	var out T
	if err := q.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *RBACRepository) GetRole(ctx context.Context, id int64) (*rbacDatamodel.Role, error) {
	return first[rbacDatamodel.Role](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *RBACRepository) GetRoleByName(ctx context.Context, empresaID int64, name string) (*rbacDatamodel.Role, error) {
	return first[rbacDatamodel.Role](r.db.WithContext(ctx).Where("empresa_id = ? AND name = ?", empresaID, name))
}

func (r *RBACRepository) ListRoles(ctx context.Context, empresaID int64) ([]*rbacDatamodel.Role, error) {
	var roles []*rbacDatamodel.Role
	err := r.db.WithContext(ctx).Where("empresa_id = ?", empresaID).Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *RBACRepository) CreateRole(ctx context.Context, role *rbacDatamodel.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

// DeleteRole cascades to the role's grants and user assignments.
func (r *RBACRepository) DeleteRole(ctx context.Context, id int64) error {
	q := r.db.WithContext(ctx)
	if err := q.Where("role_id = ?", id).Delete(&rbacDatamodel.RolePermission{}).Error; err != nil {
		return err
	}
	if err := q.Where("role_id = ?", id).Delete(&rbacDatamodel.UserRole{}).Error; err != nil {
		return err
	}
	return q.Where("id = ?", id).Delete(&rbacDatamodel.Role{}).Error
}

func (r *RBACRepository) GetPermission(ctx context.Context, id int64) (*rbacDatamodel.Permission, error) {
	return first[rbacDatamodel.Permission](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *RBACRepository) GetPermissionByKey(ctx context.Context, empresaID int64, resource, action string) (*rbacDatamodel.Permission, error) {
	return first[rbacDatamodel.Permission](r.db.WithContext(ctx).
		Where("empresa_id = ? AND resource = ? AND action = ?", empresaID, resource, action))
}

func (r *RBACRepository) ListPermissions(ctx context.Context, empresaID int64) ([]*rbacDatamodel.Permission, error) {
	var perms []*rbacDatamodel.Permission
	err := r.db.WithContext(ctx).Where("empresa_id = ?", empresaID).Order("resource ASC, action ASC").Find(&perms).Error
	return perms, err
}

func (r *RBACRepository) CreatePermission(ctx context.Context, p *rbacDatamodel.Permission) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// DeletePermission sets referencing grants' permission_id to null.
func (r *RBACRepository) DeletePermission(ctx context.Context, id int64) error {
	q := r.db.WithContext(ctx)
	err := q.Model(&rbacDatamodel.RolePermission{}).
		Where("permission_id = ?", id).
		Update("permission_id", nil).Error
	if err != nil {
		return err
	}
	return q.Where("id = ?", id).Delete(&rbacDatamodel.Permission{}).Error
}

func (r *RBACRepository) GetMenuItem(ctx context.Context, id int64) (*rbacDatamodel.MenuItem, error) {
	return first[rbacDatamodel.MenuItem](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *RBACRepository) GetMenuItemByKey(ctx context.Context, empresaID int64, resourceKey string) (*rbacDatamodel.MenuItem, error) {
	return first[rbacDatamodel.MenuItem](r.db.WithContext(ctx).
		Where("empresa_id = ? AND resource_key = ?", empresaID, resourceKey))
}

func (r *RBACRepository) ListMenuItems(ctx context.Context, empresaID int64) ([]*rbacDatamodel.MenuItem, error) {
	var items []*rbacDatamodel.MenuItem
	err := r.db.WithContext(ctx).
		Where("empresa_id = ?", empresaID).
		Order("display_order ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *RBACRepository) CountChildren(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&rbacDatamodel.MenuItem{}).Where("parent_id = ?", id).Count(&n).Error
	return n, err
}

func (r *RBACRepository) CreateMenuItem(ctx context.Context, item *rbacDatamodel.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *RBACRepository) UpdateMenuItemPlacement(ctx context.Context, id int64, parentID *int64, order int) error {
	return r.db.WithContext(ctx).Model(&rbacDatamodel.MenuItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"parent_id": parentID, "display_order": order}).Error
}

// DeleteMenuItem removes the item's grants and the item. Children are checked
// by the caller.
func (r *RBACRepository) DeleteMenuItem(ctx context.Context, id int64) error {
	q := r.db.WithContext(ctx)
	if err := q.Where("menu_item_id = ?", id).Delete(&rbacDatamodel.RolePermission{}).Error; err != nil {
		return err
	}
	return q.Where("id = ?", id).Delete(&rbacDatamodel.MenuItem{}).Error
}

func (r *RBACRepository) GetUser(ctx context.Context, id int64) (*rbacDatamodel.User, error) {
	return first[rbacDatamodel.User](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *RBACRepository) GetGrant(ctx context.Context, roleID, menuItemID int64) (*rbacDatamodel.RolePermission, error) {
	return first[rbacDatamodel.RolePermission](r.db.WithContext(ctx).
		Where("role_id = ? AND menu_item_id = ?", roleID, menuItemID))
}

func (r *RBACRepository) UpsertGrant(ctx context.Context, grant *rbacDatamodel.RolePermission) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "role_id"}, {Name: "menu_item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"permission_id",
			"empresa_id",
			"can_create",
			"can_read",
			"can_update",
			"can_delete",
			"can_activate",
			"can_reset_password",
			"updated_at",
		}),
	}).Create(grant).Error
}

func (r *RBACRepository) DeleteGrant(ctx context.Context, roleID, menuItemID int64) error {
	return r.db.WithContext(ctx).
		Where("role_id = ? AND menu_item_id = ?", roleID, menuItemID).
		Delete(&rbacDatamodel.RolePermission{}).Error
}

func (r *RBACRepository) ListGrantsByRole(ctx context.Context, roleID int64) ([]*rbacDatamodel.RolePermission, error) {
	var grants []*rbacDatamodel.RolePermission
	err := r.db.WithContext(ctx).Where("role_id = ?", roleID).Order("menu_item_id ASC").Find(&grants).Error
	return grants, err
}

func (r *RBACRepository) GetUserRole(ctx context.Context, userID, roleID int64) (*rbacDatamodel.UserRole, error) {
	return first[rbacDatamodel.UserRole](r.db.WithContext(ctx).Where("user_id = ? AND role_id = ?", userID, roleID))
}

func (r *RBACRepository) CreateUserRole(ctx context.Context, ur *rbacDatamodel.UserRole) error {
	return r.db.WithContext(ctx).Create(ur).Error
}

func (r *RBACRepository) DeleteUserRole(ctx context.Context, userID, roleID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&rbacDatamodel.UserRole{}).Error
}

func (r *RBACRepository) ListRoleIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&rbacDatamodel.UserRole{}).
		Where("user_id = ?", userID).
		Order("role_id ASC").
		Pluck("role_id", &ids).Error
	return ids, err
}
