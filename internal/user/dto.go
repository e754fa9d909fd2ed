package user

import (
	"regexp"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/core/common/validation"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-@]+$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type CreateUserDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (d CreateUserDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("username", d.Username).
		Required().
		MaxLength(maxUsernameLength).
		Matches(usernamePattern, internal.ErrCodeInvalidName)
	validator.Field("email", d.Email).
		Required().
		MaxLength(150).
		Matches(emailPattern, internal.ErrCodeValidationFailed)
	validator.Field("name", d.Name).Required().MaxLength(maxNameLength)
	validator.Field("password", d.Password).Required().MinLength(minPasswordLength)
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

type SetActiveDTO struct {
	IsActive bool `json:"is_active"`
}

type ResetPasswordDTO struct {
	Password string `json:"password"`
}

func (d ResetPasswordDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("password", d.Password).Required().MinLength(minPasswordLength)
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

type UsersResponse struct {
	Users  []*User `json:"users"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
