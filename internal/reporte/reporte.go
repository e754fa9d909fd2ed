// Package reporte serves read-only aggregates over vaccination data.
package reporte

import "github.com/frahmantamala/vaccination-registry/internal"

// maxRangeDays bounds a report window to one leap year.
const maxRangeDays = 366

var ErrInvalidRange = internal.NewValidationFieldError("hasta", "hasta must not precede desde", internal.ErrCodeInvalidDate)

// InsumoVacunacion is one row of the vaccinations-per-insumo report.
type InsumoVacunacion struct {
	InsumoID       int64  `db:"insumo_id" json:"insumo_id"`
	Codigo         string `db:"codigo" json:"codigo"`
	Nombre         string `db:"nombre" json:"nombre"`
	DosisAplicadas int64  `db:"dosis_aplicadas" json:"dosis_aplicadas"`
	Pacientes      int64  `db:"pacientes" json:"pacientes"`
	StockActual    int64  `db:"stock_actual" json:"stock_actual"`
}

type VacunacionPorInsumoReport struct {
	Desde      string              `json:"desde"`
	Hasta      string              `json:"hasta"`
	Rows       []*InsumoVacunacion `json:"rows"`
	TotalDosis int64               `json:"total_dosis"`
}
