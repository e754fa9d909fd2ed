package insumo

import (
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/core/common/validation"
)

type CreateInsumoDTO struct {
	Codigo       string `json:"codigo"`
	Nombre       string `json:"nombre"`
	Tipo         string `json:"tipo"`
	UnidadMedida string `json:"unidad_medida"`
}

func (d CreateInsumoDTO) Validate() error {
	if err := validation.ValidateCode("codigo", d.Codigo, 30); err != nil {
		return err
	}
	validator := validation.NewValidator()
	validator.Field("nombre", d.Nombre).Required().MaxLength(150)
	validator.Field("tipo", d.Tipo).Required().OneOf(Tipos...)
	validator.Field("unidad_medida", d.UnidadMedida).MaxLength(30)
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

type RegisterEntradaDTO struct {
	Lote             string `json:"lote"`
	FechaVencimiento string `json:"fecha_vencimiento"`
	Cantidad         int64  `json:"cantidad"`
	FechaEntrada     string `json:"fecha_entrada"`
}

type entradaDates struct {
	vencimiento time.Time
	entrada     time.Time
}

func (d RegisterEntradaDTO) validate() (entradaDates, error) {
	validator := validation.NewValidator()
	validator.Field("lote", d.Lote).Required().MaxLength(50)
	validator.Field("cantidad", d.Cantidad).MinInt(1, internal.ErrCodeInvalidQuantity).MaxInt(1_000_000, internal.ErrCodeInvalidQuantity)
	if err := validator.Validate(); err != nil {
		return entradaDates{}, err
	}

	vencimiento, err := validation.ParseCalendarDate("fecha_vencimiento", d.FechaVencimiento)
	if err != nil {
		return entradaDates{}, err
	}
	entrada, err := validation.ParseDate("fecha_entrada", d.FechaEntrada)
	if err != nil {
		return entradaDates{}, err
	}
	if !vencimiento.After(entrada) {
		return entradaDates{}, internal.NewValidationFieldError("fecha_vencimiento",
			"fecha_vencimiento must be after fecha_entrada", internal.ErrCodeInvalidDate)
	}
	return entradaDates{vencimiento: vencimiento, entrada: entrada}, nil
}

type InsumosResponse struct {
	Insumos []*Insumo `json:"insumos"`
}

type EntradasResponse struct {
	Entradas []*Entrada `json:"entradas"`
}
