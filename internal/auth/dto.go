package auth

import "github.com/frahmantamala/vaccination-registry/internal/core/common/validation"

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (d LoginDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("username", d.Username).Required().MaxLength(150)
	validator.Field("password", d.Password).Required()
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

func (d RefreshTokenDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("refresh_token", d.RefreshToken).Required()
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}
