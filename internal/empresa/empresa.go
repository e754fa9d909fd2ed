// Package empresa manages tenants. Every other entity is owned by one.
package empresa

import (
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	empresaDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/empresa"
)

const (
	maxCodigoLength      = 20
	maxRazonSocialLength = 200
	maxNITLength         = 30
)

var (
	ErrEmpresaNotFound   = internal.NewNotFoundError("Empresa not found", internal.ErrCodeNotFound)
	ErrDuplicateCodigo   = internal.NewConflictError("An empresa with this codigo already exists", internal.ErrCodeDuplicate)
	ErrEmpresaHasRecords = internal.NewConflictError("Empresa still owns users, roles or pacientes", internal.ErrCodeHasDependents)
)

type Empresa struct {
	ID          int64     `json:"id"`
	Codigo      string    `json:"codigo"`
	RazonSocial string    `json:"razon_social"`
	NIT         string    `json:"nit"`
	Email       string    `json:"email,omitempty"`
	Telefono    string    `json:"telefono,omitempty"`
	Direccion   string    `json:"direccion,omitempty"`
	Estado      bool      `json:"estado"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromDataModel(e *empresaDatamodel.Empresa) *Empresa {
	return &Empresa{
		ID:          e.ID,
		Codigo:      e.Codigo,
		RazonSocial: e.RazonSocial,
		NIT:         e.NIT,
		Email:       e.Email,
		Telefono:    e.Telefono,
		Direccion:   e.Direccion,
		Estado:      e.Estado,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// Dependents counts the rows that keep a tenant from being deleted.
type Dependents struct {
	Users     int64 `json:"users"`
	Roles     int64 `json:"roles"`
	Pacientes int64 `json:"pacientes"`
}

func (d Dependents) Any() bool {
	return d.Users > 0 || d.Roles > 0 || d.Pacientes > 0
}
