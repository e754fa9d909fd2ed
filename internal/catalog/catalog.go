// Package catalog manages the coded reference tables used by pacientes and
// vaccination records. All seven kinds share one row shape.
package catalog

import (
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	registroDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/registro"
)

type Kind string

const (
	KindTipoCarnet        Kind = "tipos-carnet"
	KindCondicionUsuaria  Kind = "condiciones-usuaria"
	KindPertenenciaEtnica Kind = "pertenencias-etnicas"
	KindAseguradora       Kind = "aseguradoras"
	KindRegimenAfiliacion Kind = "regimenes-afiliacion"
	KindHospital          Kind = "hospitales"
	KindCentroAtencion    Kind = "centros-atencion"
)

// Reference is a column of another table pointing at a catalog row.
type Reference struct {
	Table  string
	Column string
}

type kindInfo struct {
	table string
	refs  []Reference
}

var kinds = map[Kind]kindInfo{
	KindTipoCarnet: {
		table: registroDatamodel.TipoCarnet{}.TableName(),
		refs:  []Reference{{"pacientes", "tipo_carnet_id"}, {"registros_vacunacion", "tipo_carnet_id"}},
	},
	KindCondicionUsuaria: {
		table: registroDatamodel.CondicionUsuaria{}.TableName(),
		refs:  []Reference{{"pacientes", "condicion_usuaria_id"}, {"registros_vacunacion", "condicion_usuaria_id"}},
	},
	KindPertenenciaEtnica: {
		table: registroDatamodel.PertenenciaEtnica{}.TableName(),
		refs:  []Reference{{"pacientes", "pertenencia_etnica_id"}, {"registros_vacunacion", "pertenencia_etnica_id"}},
	},
	KindAseguradora: {
		table: registroDatamodel.Aseguradora{}.TableName(),
		refs:  []Reference{{"pacientes", "aseguradora_id"}, {"registros_vacunacion", "aseguradora_id"}},
	},
	KindRegimenAfiliacion: {
		table: registroDatamodel.RegimenAfiliacion{}.TableName(),
		refs:  []Reference{{"pacientes", "regimen_afiliacion_id"}, {"registros_vacunacion", "regimen_afiliacion_id"}},
	},
	KindHospital: {
		table: registroDatamodel.Hospital{}.TableName(),
		refs:  []Reference{{"registros_vacunacion", "hospital_id"}},
	},
	KindCentroAtencion: {
		table: registroDatamodel.CentroAtencion{}.TableName(),
		refs:  []Reference{{"registros_vacunacion", "centro_atencion_id"}},
	},
}

func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := kinds[k]; !ok {
		return "", ErrUnknownKind
	}
	return k, nil
}

func Kinds() []Kind {
	return []Kind{
		KindTipoCarnet, KindCondicionUsuaria, KindPertenenciaEtnica, KindAseguradora,
		KindRegimenAfiliacion, KindHospital, KindCentroAtencion,
	}
}

func (k Kind) Table() string {
	return kinds[k].table
}

// References lists the columns set to null when an entry of k is deleted.
func (k Kind) References() []Reference {
	return kinds[k].refs
}

const (
	maxCodigoLength = 20
	maxNombreLength = 150
)

var (
	ErrUnknownKind   = internal.NewNotFoundError("Unknown catalog", internal.ErrCodeNotFound)
	ErrEntryNotFound = internal.NewNotFoundError("Catalog entry not found", internal.ErrCodeNotFound)
	ErrDuplicateCode = internal.NewConflictError("A catalog entry with this codigo already exists", internal.ErrCodeDuplicate)
	ErrEntryInactive = internal.NewValidationError("Catalog entry is inactive", internal.ErrCodeValidationFailed)
)

type Entry struct {
	ID        int64     `json:"id"`
	Kind      Kind      `json:"kind"`
	Codigo    string    `json:"codigo"`
	Nombre    string    `json:"nombre"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromDataModel(kind Kind, e *registroDatamodel.CatalogEntry) *Entry {
	return &Entry{
		ID:        e.ID,
		Kind:      kind,
		Codigo:    e.Codigo,
		Nombre:    e.Nombre,
		IsActive:  e.IsActive,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (e *Entry) IsActiveEntry() bool {
	return e.IsActive
}
