package auth

import (
	"context"
	"errors"

	rbacDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/rbac"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// GetUserByUsername returns inactive users too so the service can tell them
// apart from bad credentials.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*rbacDatamodel.User, error) {
	var user rbacDatamodel.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
