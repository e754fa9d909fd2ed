// Package insumo tracks vaccine and supply stock. Stock only moves through
// entradas (up) and applied vaccines (down), each inside one transaction.
package insumo

import (
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	registroDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/registro"
)

const (
	TipoVacuna    = "vacuna"
	TipoJeringa   = "jeringa"
	TipoDiluyente = "diluyente"
	TipoOtro      = "otro"
)

var Tipos = []string{TipoVacuna, TipoJeringa, TipoDiluyente, TipoOtro}

var (
	ErrInsumoNotFound    = internal.NewNotFoundError("Insumo not found", internal.ErrCodeNotFound)
	ErrDuplicateCodigo   = internal.NewConflictError("An insumo with this codigo already exists", internal.ErrCodeDuplicate)
	ErrInsumoInactive    = internal.NewConflictError("Insumo is inactive", internal.ErrCodeValidationFailed)
	ErrInsufficientStock = internal.NewConflictError("Insufficient stock", internal.ErrCodeInsufficientStock)
)

type Insumo struct {
	ID           int64     `json:"id"`
	Codigo       string    `json:"codigo"`
	Nombre       string    `json:"nombre"`
	Tipo         string    `json:"tipo"`
	UnidadMedida string    `json:"unidad_medida,omitempty"`
	Stock        int64     `json:"stock"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func FromDataModel(i *registroDatamodel.Insumo) *Insumo {
	return &Insumo{
		ID:           i.ID,
		Codigo:       i.Codigo,
		Nombre:       i.Nombre,
		Tipo:         i.Tipo,
		UnidadMedida: i.UnidadMedida,
		Stock:        i.Stock,
		IsActive:     i.IsActive,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

type Entrada struct {
	ID               int64     `json:"id"`
	InsumoID         int64     `json:"insumo_id"`
	Lote             string    `json:"lote"`
	FechaVencimiento string    `json:"fecha_vencimiento"`
	Cantidad         int64     `json:"cantidad"`
	FechaEntrada     string    `json:"fecha_entrada"`
	CreatedAt        time.Time `json:"created_at"`
}

func EntradaFromDataModel(e *registroDatamodel.Entrada) *Entrada {
	return &Entrada{
		ID:               e.ID,
		InsumoID:         e.InsumoID,
		Lote:             e.Lote,
		FechaVencimiento: e.FechaVencimiento.Format("2006-01-02"),
		Cantidad:         e.Cantidad,
		FechaEntrada:     e.FechaEntrada.Format("2006-01-02"),
		CreatedAt:        e.CreatedAt,
	}
}
