package paciente

import (
	"regexp"
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/core/common/validation"
)

var identificacionPattern = regexp.MustCompile(`^[A-Za-z0-9\-]+$`)

var TiposAntecedente = []string{"patologico", "alergico", "quirurgico", "farmacologico", "familiar", "otro"}

// PacienteDTO carries every writable field. Create and Update share it.
type PacienteDTO struct {
	TipoIdentificacion   string `json:"tipo_identificacion"`
	NumeroIdentificacion string `json:"numero_identificacion"`
	PrimerNombre         string `json:"primer_nombre"`
	SegundoNombre        string `json:"segundo_nombre"`
	PrimerApellido       string `json:"primer_apellido"`
	SegundoApellido      string `json:"segundo_apellido"`
	FechaNacimiento      string `json:"fecha_nacimiento"`
	Sexo                 string `json:"sexo"`
	Telefono             string `json:"telefono"`
	Direccion            string `json:"direccion"`
	TipoCarnetID         *int64 `json:"tipo_carnet_id"`
	CondicionUsuariaID   *int64 `json:"condicion_usuaria_id"`
	PertenenciaEtnicaID  *int64 `json:"pertenencia_etnica_id"`
	AseguradoraID        *int64 `json:"aseguradora_id"`
	RegimenAfiliacionID  *int64 `json:"regimen_afiliacion_id"`
}

// Validate returns the parsed birth date on success.
func (d PacienteDTO) Validate() (time.Time, error) {
	validator := validation.NewValidator()
	validator.Field("tipo_identificacion", d.TipoIdentificacion).Required().OneOf(TiposIdentificacion...)
	validator.Field("numero_identificacion", d.NumeroIdentificacion).
		Required().
		MaxLength(maxIdentificacionLength).
		Matches(identificacionPattern, internal.ErrCodeInvalidCode)
	validator.Field("primer_nombre", d.PrimerNombre).Required().MaxLength(maxNombreLength)
	validator.Field("segundo_nombre", d.SegundoNombre).MaxLength(maxNombreLength)
	validator.Field("primer_apellido", d.PrimerApellido).Required().MaxLength(maxNombreLength)
	validator.Field("segundo_apellido", d.SegundoApellido).MaxLength(maxNombreLength)
	validator.Field("sexo", d.Sexo).OneOf(Sexos...)
	validator.Field("telefono", d.Telefono).MaxLength(20)
	validator.Field("direccion", d.Direccion).MaxLength(200)
	if err := validator.Validate(); err != nil {
		return time.Time{}, err
	}

	fecha, err := validation.ParseDate("fecha_nacimiento", d.FechaNacimiento)
	if err != nil {
		return time.Time{}, err
	}
	return fecha, nil
}

type CreateAntecedenteDTO struct {
	Tipo             string `json:"tipo"`
	Descripcion      string `json:"descripcion"`
	FechaDiagnostico string `json:"fecha_diagnostico"`
}

// Validate returns the parsed diagnosis date, nil when absent.
func (d CreateAntecedenteDTO) Validate() (*time.Time, error) {
	validator := validation.NewValidator()
	validator.Field("tipo", d.Tipo).Required().OneOf(TiposAntecedente...)
	validator.Field("descripcion", d.Descripcion).Required().MaxLength(maxDescripcionLength)
	if err := validator.Validate(); err != nil {
		return nil, err
	}
	if d.FechaDiagnostico == "" {
		return nil, nil
	}
	fecha, err := validation.ParseDate("fecha_diagnostico", d.FechaDiagnostico)
	if err != nil {
		return nil, err
	}
	return &fecha, nil
}

type PacientesResponse struct {
	Pacientes []*Paciente `json:"pacientes"`
	Total     int64       `json:"total"`
	Limit     int         `json:"limit"`
	Offset    int         `json:"offset"`
}

type AntecedentesResponse struct {
	Antecedentes []*Antecedente `json:"antecedentes"`
}
