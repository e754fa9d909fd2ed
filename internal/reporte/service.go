package reporte

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	"github.com/frahmantamala/vaccination-registry/internal/core/common/validation"
)

type Repository interface {
	// VacunacionPorInsumo aggregates doses applied in [desde, hasta).
	VacunacionPorInsumo(ctx context.Context, empresaID int64, desde, hasta time.Time) ([]*InsumoVacunacion, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// VacunacionPorInsumo reports applied doses per insumo between two calendar
// dates, both inclusive.
func (s *Service) VacunacionPorInsumo(ctx context.Context, p *access.Principal, desde, hasta string) (*VacunacionPorInsumoReport, error) {
	from, verr := validation.ParseCalendarDate("desde", desde)
	if verr != nil {
		return nil, verr
	}
	to, verr := validation.ParseCalendarDate("hasta", hasta)
	if verr != nil {
		return nil, verr
	}
	if to.Before(from) {
		return nil, ErrInvalidRange
	}
	if to.Sub(from) > maxRangeDays*24*time.Hour {
		return nil, internal.NewValidationFieldError("hasta", "report range cannot exceed 366 days", internal.ErrCodeInvalidDate)
	}

	rows, err := s.repo.VacunacionPorInsumo(ctx, p.EmpresaID, from, to.AddDate(0, 0, 1))
	if err != nil {
		s.logger.Error("report query failed", "report", "vacunacion_por_insumo", "error", err)
		return nil, internal.NewDependencyError("report store unavailable", err)
	}

	report := &VacunacionPorInsumoReport{Desde: desde, Hasta: hasta, Rows: rows}
	for _, r := range rows {
		report.TotalDosis += r.DosisAplicadas
	}
	s.logger.Debug("report generated", "report", "vacunacion_por_insumo", "rows", len(rows), "empresa_id", p.EmpresaID)
	return report, nil
}
