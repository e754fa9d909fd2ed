package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/vaccination-registry/internal/reporte"
	"github.com/jmoiron/sqlx"
)

type ReporteRepository struct {
	db *sqlx.DB
}

func NewReporteRepository(db *sqlx.DB) reporte.Repository {
	return &ReporteRepository{db: db}
}

const vacunacionPorInsumoQuery = `
SELECT i.id AS insumo_id,
       i.codigo,
       i.nombre,
       COUNT(v.id) AS dosis_aplicadas,
       COUNT(DISTINCT r.paciente_id) AS pacientes,
       i.stock AS stock_actual
  FROM vacunas_aplicadas v
  JOIN insumos i ON i.id = v.insumo_id
  JOIN registros_vacunacion r ON r.id = v.registro_vacunacion_id
 WHERE v.empresa_id = ?
   AND v.fecha_aplicacion >= ?
   AND v.fecha_aplicacion < ?
 GROUP BY i.id, i.codigo, i.nombre, i.stock
 ORDER BY i.nombre ASC, i.id ASC`

func (r *ReporteRepository) VacunacionPorInsumo(ctx context.Context, empresaID int64, desde, hasta time.Time) ([]*reporte.InsumoVacunacion, error) {
	rows := []*reporte.InsumoVacunacion{}
	query := r.db.Rebind(vacunacionPorInsumoQuery)
	if err := r.db.SelectContext(ctx, &rows, query, empresaID, desde, hasta); err != nil {
		return nil, fmt.Errorf("vacunacion por insumo query: %w", err)
	}
	return rows, nil
}
