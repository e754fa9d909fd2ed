package vacunacion

import (
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	registroDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/registro"
)

var (
	Dosis = []string{"unica", "primera", "segunda", "tercera", "cuarta", "refuerzo", "adicional"}
	Vias  = []string{"intramuscular", "subcutanea", "intradermica", "oral", "nasal"}
)

var (
	ErrRegistroNotFound = internal.NewNotFoundError("Registro de vacunacion not found", internal.ErrCodeNotFound)
	ErrEntradaNotFound  = internal.NewNotFoundError("Entrada not found", internal.ErrCodeNotFound)
	ErrEntradaMismatch  = internal.NewValidationFieldError("entrada_id", "entrada does not belong to the insumo", internal.ErrCodeValidationFailed)
	ErrEntradaExpired   = internal.NewConflictError("Entrada lot is expired", internal.ErrCodeValidationFailed)
	ErrInsumoNotVacuna  = internal.NewValidationFieldError("insumo_id", "insumo is not a vaccine", internal.ErrCodeValidationFailed)
)

type Registro struct {
	ID                  int64             `json:"id"`
	PacienteID          int64             `json:"paciente_id"`
	FechaAtencion       string            `json:"fecha_atencion"`
	Observaciones       string            `json:"observaciones,omitempty"`
	HospitalID          *int64            `json:"hospital_id,omitempty"`
	CentroAtencionID    *int64            `json:"centro_atencion_id,omitempty"`
	AseguradoraID       *int64            `json:"aseguradora_id,omitempty"`
	RegimenAfiliacionID *int64            `json:"regimen_afiliacion_id,omitempty"`
	TipoCarnetID        *int64            `json:"tipo_carnet_id,omitempty"`
	CondicionUsuariaID  *int64            `json:"condicion_usuaria_id,omitempty"`
	PertenenciaEtnicaID *int64            `json:"pertenencia_etnica_id,omitempty"`
	CreadoPorID         *int64            `json:"creado_por_id,omitempty"`
	ModificadoPorID     *int64            `json:"modificado_por_id,omitempty"`
	Vacunas             []*VacunaAplicada `json:"vacunas"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

func FromDataModel(r *registroDatamodel.RegistroVacunacion, vacunas []*registroDatamodel.VacunaAplicada) *Registro {
	out := &Registro{
		ID:                  r.ID,
		PacienteID:          r.PacienteID,
		FechaAtencion:       r.FechaAtencion.Format("2006-01-02"),
		Observaciones:       r.Observaciones,
		HospitalID:          r.HospitalID,
		CentroAtencionID:    r.CentroAtencionID,
		AseguradoraID:       r.AseguradoraID,
		RegimenAfiliacionID: r.RegimenAfiliacionID,
		TipoCarnetID:        r.TipoCarnetID,
		CondicionUsuariaID:  r.CondicionUsuariaID,
		PertenenciaEtnicaID: r.PertenenciaEtnicaID,
		CreadoPorID:         r.CreadoPorID,
		ModificadoPorID:     r.ModificadoPorID,
		Vacunas:             make([]*VacunaAplicada, 0, len(vacunas)),
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
	for _, v := range vacunas {
		out.Vacunas = append(out.Vacunas, VacunaFromDataModel(v))
	}
	return out
}

type VacunaAplicada struct {
	ID                int64  `json:"id"`
	InsumoID          *int64 `json:"insumo_id,omitempty"`
	EntradaID         *int64 `json:"entrada_id,omitempty"`
	Dosis             string `json:"dosis"`
	ViaAdministracion string `json:"via_administracion,omitempty"`
	FechaAplicacion   string `json:"fecha_aplicacion"`
}

func VacunaFromDataModel(v *registroDatamodel.VacunaAplicada) *VacunaAplicada {
	return &VacunaAplicada{
		ID:                v.ID,
		InsumoID:          v.InsumoID,
		EntradaID:         v.EntradaID,
		Dosis:             v.Dosis,
		ViaAdministracion: v.ViaAdministracion,
		FechaAplicacion:   v.FechaAplicacion.Format("2006-01-02"),
	}
}

// StockMovement is the stock effect of one write on one insumo.
type StockMovement struct {
	InsumoID int64
	Delta    int64
	Stock    int64
}
