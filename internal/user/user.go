package user

import (
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	rbacDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/rbac"
)

const (
	maxUsernameLength = 150
	maxNameLength     = 150
	minPasswordLength = 8
)

var (
	ErrNotFound          = internal.NewNotFoundError("User not found", internal.ErrCodeNotFound)
	ErrDuplicateUsername = internal.NewConflictError("Username is already taken", internal.ErrCodeDuplicate)
	ErrDuplicateEmail    = internal.NewConflictError("Email is already registered", internal.ErrCodeDuplicate)
	ErrDeleteSelf        = internal.NewConflictError("Users cannot delete their own account", internal.ErrCodeHasDependents)
)

type User struct {
	ID        int64     `json:"id"`
	EmpresaID int64     `json:"empresa_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) IsActiveUser() bool {
	return u.IsActive
}

func FromDataModel(u *rbacDatamodel.User) *User {
	return &User{
		ID:        u.ID,
		EmpresaID: u.EmpresaID,
		Username:  u.Username,
		Email:     u.Email,
		Name:      u.Name,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
