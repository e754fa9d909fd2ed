package postgres

import (
	"context"
	"errors"

	rbacDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/rbac"
	registroDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/registro"
	"github.com/frahmantamala/vaccination-registry/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) first(q *gorm.DB) (*rbacDatamodel.User, error) {
	var u rbacDatamodel.User
	if err := q.First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*rbacDatamodel.User, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*rbacDatamodel.User, error) {
	return r.first(r.db.WithContext(ctx).Where("username = ?", username))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*rbacDatamodel.User, error) {
	return r.first(r.db.WithContext(ctx).Where("email = ?", email))
}

func (r *UserRepository) List(ctx context.Context, empresaID int64, limit, offset int) ([]*rbacDatamodel.User, error) {
	var users []*rbacDatamodel.User
	err := r.db.WithContext(ctx).
		Where("empresa_id = ?", empresaID).
		Order("username ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, err
}

func (r *UserRepository) Create(ctx context.Context, u *rbacDatamodel.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.db.WithContext(ctx).Model(&rbacDatamodel.User{}).Where("id = ?", id).Update("is_active", active).Error
}

func (r *UserRepository) SetPasswordHash(ctx context.Context, id int64, hash string) error {
	return r.db.WithContext(ctx).Model(&rbacDatamodel.User{}).Where("id = ?", id).Update("password_hash", hash).Error
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&rbacDatamodel.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&registroDatamodel.RegistroVacunacion{}).
			Where("creado_por_id = ?", id).
			Update("creado_por_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&registroDatamodel.RegistroVacunacion{}).
			Where("modificado_por_id = ?", id).
			Update("modificado_por_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&rbacDatamodel.User{}).Error
	})
}
