package vacunacion

import (
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/core/common/validation"
)

type RegistroDTO struct {
	PacienteID          int64  `json:"paciente_id"`
	FechaAtencion       string `json:"fecha_atencion"`
	Observaciones       string `json:"observaciones"`
	HospitalID          *int64 `json:"hospital_id"`
	CentroAtencionID    *int64 `json:"centro_atencion_id"`
	AseguradoraID       *int64 `json:"aseguradora_id"`
	RegimenAfiliacionID *int64 `json:"regimen_afiliacion_id"`
	TipoCarnetID        *int64 `json:"tipo_carnet_id"`
	CondicionUsuariaID  *int64 `json:"condicion_usuaria_id"`
	PertenenciaEtnicaID *int64 `json:"pertenencia_etnica_id"`
}

func (d RegistroDTO) Validate() (time.Time, error) {
	validator := validation.NewValidator()
	validator.Field("paciente_id", d.PacienteID).Required()
	validator.Field("observaciones", d.Observaciones).MaxLength(1000)
	if err := validator.Validate(); err != nil {
		return time.Time{}, err
	}
	fecha, err := validation.ParseDate("fecha_atencion", d.FechaAtencion)
	if err != nil {
		return time.Time{}, err
	}
	return fecha, nil
}

type VacunaDTO struct {
	InsumoID          int64  `json:"insumo_id"`
	EntradaID         *int64 `json:"entrada_id"`
	Dosis             string `json:"dosis"`
	ViaAdministracion string `json:"via_administracion"`
	FechaAplicacion   string `json:"fecha_aplicacion"`
}

// Validate returns the application date, which must not precede the visit.
func (d VacunaDTO) Validate(fechaAtencion time.Time) (time.Time, error) {
	validator := validation.NewValidator()
	validator.Field("insumo_id", d.InsumoID).Required()
	validator.Field("dosis", d.Dosis).Required().OneOf(Dosis...)
	validator.Field("via_administracion", d.ViaAdministracion).OneOf(Vias...)
	if err := validator.Validate(); err != nil {
		return time.Time{}, err
	}
	fecha, err := validation.ParseDate("fecha_aplicacion", d.FechaAplicacion)
	if err != nil {
		return time.Time{}, err
	}
	if fecha.Before(fechaAtencion) {
		return time.Time{}, internal.NewValidationFieldError("fecha_aplicacion",
			"fecha_aplicacion cannot precede fecha_atencion", internal.ErrCodeInvalidDate)
	}
	return fecha, nil
}

type RegistrosResponse struct {
	Registros []*Registro `json:"registros"`
}
