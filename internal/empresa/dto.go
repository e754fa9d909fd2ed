package empresa

import (
	"regexp"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/core/common/validation"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type CreateEmpresaDTO struct {
	Codigo      string `json:"codigo"`
	RazonSocial string `json:"razon_social"`
	NIT         string `json:"nit"`
	Email       string `json:"email"`
	Telefono    string `json:"telefono"`
	Direccion   string `json:"direccion"`
}

func (d CreateEmpresaDTO) Validate() error {
	if err := validation.ValidateCode("codigo", d.Codigo, maxCodigoLength); err != nil {
		return err
	}
	return UpdateEmpresaDTO{
		RazonSocial: d.RazonSocial,
		NIT:         d.NIT,
		Email:       d.Email,
		Telefono:    d.Telefono,
		Direccion:   d.Direccion,
	}.Validate()
}

type UpdateEmpresaDTO struct {
	RazonSocial string `json:"razon_social"`
	NIT         string `json:"nit"`
	Email       string `json:"email"`
	Telefono    string `json:"telefono"`
	Direccion   string `json:"direccion"`
}

func (d UpdateEmpresaDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("razon_social", d.RazonSocial).Required().MaxLength(maxRazonSocialLength)
	validator.Field("nit", d.NIT).Required().MaxLength(maxNITLength)
	validator.Field("email", d.Email).MaxLength(150).Matches(emailPattern, internal.ErrCodeValidationFailed)
	validator.Field("telefono", d.Telefono).MaxLength(30)
	validator.Field("direccion", d.Direccion).MaxLength(250)
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

type SetEstadoDTO struct {
	Estado bool `json:"estado"`
}
