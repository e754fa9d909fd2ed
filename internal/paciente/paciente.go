package paciente

import (
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	registroDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/registro"
)

var (
	TiposIdentificacion = []string{"CC", "TI", "RC", "CE", "PA", "MS", "AS", "PEP"}
	Sexos               = []string{"M", "F", "I"}
)

const (
	maxNombreLength         = 60
	maxIdentificacionLength = 20
	maxDescripcionLength    = 500
)

var (
	ErrPacienteNotFound        = internal.NewNotFoundError("Paciente not found", internal.ErrCodeNotFound)
	ErrAntecedenteNotFound     = internal.NewNotFoundError("Antecedente not found", internal.ErrCodeNotFound)
	ErrDuplicateIdentificacion = internal.NewConflictError("A paciente with this identificacion already exists", internal.ErrCodeDuplicate)
	ErrPacienteHasRegistros    = internal.NewConflictError("Paciente has vaccination records", internal.ErrCodeHasDependents)
)

type Paciente struct {
	ID                   int64     `json:"id"`
	TipoIdentificacion   string    `json:"tipo_identificacion"`
	NumeroIdentificacion string    `json:"numero_identificacion"`
	PrimerNombre         string    `json:"primer_nombre"`
	SegundoNombre        string    `json:"segundo_nombre,omitempty"`
	PrimerApellido       string    `json:"primer_apellido"`
	SegundoApellido      string    `json:"segundo_apellido,omitempty"`
	FechaNacimiento      string    `json:"fecha_nacimiento"`
	Sexo                 string    `json:"sexo,omitempty"`
	Telefono             string    `json:"telefono,omitempty"`
	Direccion            string    `json:"direccion,omitempty"`
	TipoCarnetID         *int64    `json:"tipo_carnet_id,omitempty"`
	CondicionUsuariaID   *int64    `json:"condicion_usuaria_id,omitempty"`
	PertenenciaEtnicaID  *int64    `json:"pertenencia_etnica_id,omitempty"`
	AseguradoraID        *int64    `json:"aseguradora_id,omitempty"`
	RegimenAfiliacionID  *int64    `json:"regimen_afiliacion_id,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func FromDataModel(p *registroDatamodel.Paciente) *Paciente {
	return &Paciente{
		ID:                   p.ID,
		TipoIdentificacion:   p.TipoIdentificacion,
		NumeroIdentificacion: p.NumeroIdentificacion,
		PrimerNombre:         p.PrimerNombre,
		SegundoNombre:        p.SegundoNombre,
		PrimerApellido:       p.PrimerApellido,
		SegundoApellido:      p.SegundoApellido,
		FechaNacimiento:      p.FechaNacimiento.Format("2006-01-02"),
		Sexo:                 p.Sexo,
		Telefono:             p.Telefono,
		Direccion:            p.Direccion,
		TipoCarnetID:         p.TipoCarnetID,
		CondicionUsuariaID:   p.CondicionUsuariaID,
		PertenenciaEtnicaID:  p.PertenenciaEtnicaID,
		AseguradoraID:        p.AseguradoraID,
		RegimenAfiliacionID:  p.RegimenAfiliacionID,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

// NombreCompleto joins the non-empty name parts.
func (p *Paciente) NombreCompleto() string {
	out := p.PrimerNombre
	for _, part := range []string{p.SegundoNombre, p.PrimerApellido, p.SegundoApellido} {
		if part != "" {
			out += " " + part
		}
	}
	return out
}

type Antecedente struct {
	ID               int64     `json:"id"`
	PacienteID       int64     `json:"paciente_id"`
	Tipo             string    `json:"tipo"`
	Descripcion      string    `json:"descripcion"`
	FechaDiagnostico string    `json:"fecha_diagnostico,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func AntecedenteFromDataModel(a *registroDatamodel.AntecedenteMedico) *Antecedente {
	out := &Antecedente{
		ID:          a.ID,
		PacienteID:  a.PacienteID,
		Tipo:        a.Tipo,
		Descripcion: a.Descripcion,
		CreatedAt:   a.CreatedAt,
	}
	if a.FechaDiagnostico != nil {
		out.FechaDiagnostico = a.FechaDiagnostico.Format("2006-01-02")
	}
	return out
}
