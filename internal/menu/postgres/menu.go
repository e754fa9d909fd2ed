package postgres

import (
	"context"
	"errors"

	empresaDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/empresa"
	rbacDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/rbac"
	"github.com/frahmantamala/vaccination-registry/internal/menu"
	"gorm.io/gorm"
)

type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) menu.Repository {
	return &MenuRepository{db: db}
}

func (r *MenuRepository) GetUserByUsername(ctx context.Context, username string) (*rbacDatamodel.User, error) {
	var u rbacDatamodel.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// IsTenantActive reports false for disabled and for missing tenants.
func (r *MenuRepository) IsTenantActive(ctx context.Context, empresaID int64) (bool, error) {
	var e empresaDatamodel.Empresa
	err := r.db.WithContext(ctx).Select("id", "estado").Where("id = ?", empresaID).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return e.Estado, nil
}

func (r *MenuRepository) ListRoleIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&rbacDatamodel.UserRole{}).
		Where("user_id = ?", userID).
		Pluck("role_id", &ids).Error
	return ids, err
}

func (r *MenuRepository) ListGrants(ctx context.Context, empresaID int64, roleIDs []int64) ([]*rbacDatamodel.RolePermission, error) {
	var grants []*rbacDatamodel.RolePermission
	err := r.db.WithContext(ctx).
		Where("empresa_id = ? AND role_id IN ?", empresaID, roleIDs).
		Find(&grants).Error
	return grants, err
}

func (r *MenuRepository) ListActiveMenuItems(ctx context.Context, empresaID int64) ([]*rbacDatamodel.MenuItem, error) {
	var items []*rbacDatamodel.MenuItem
	err := r.db.WithContext(ctx).
		Where("empresa_id = ? AND is_active = ?", empresaID, true).
		Order("display_order ASC, id ASC").
		Find(&items).Error
	return items, err
}
