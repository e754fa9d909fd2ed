package insumo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	registroDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/registro"
	"github.com/frahmantamala/vaccination-registry/internal/core/events"
	"github.com/frahmantamala/vaccination-registry/internal/tenant"
	"gorm.io/gorm"
)

// Repository getters return nil, nil when the row does not exist.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*registroDatamodel.Insumo, error)
	GetByCodigo(ctx context.Context, empresaID int64, codigo string) (*registroDatamodel.Insumo, error)
	List(ctx context.Context, empresaID int64, onlyActive bool) ([]*registroDatamodel.Insumo, error)
	Create(ctx context.Context, i *registroDatamodel.Insumo) error
	SetActive(ctx context.Context, id int64, active bool) error
	// AddEntrada stores the lot and raises the insumo stock atomically,
	// returning the new stock.
	AddEntrada(ctx context.Context, e *registroDatamodel.Entrada) (int64, error)
	ListEntradas(ctx context.Context, insumoID int64) ([]*registroDatamodel.Entrada, error)
}

type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) Create(ctx context.Context, p *access.Principal, dto CreateInsumoDTO) (*Insumo, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByCodigo(ctx, p.EmpresaID, dto.Codigo)
	if err != nil {
		return nil, s.storeError("get insumo by codigo", err)
	}
	if existing != nil {
		return nil, ErrDuplicateCodigo
	}

	row := &registroDatamodel.Insumo{
		EmpresaID:    p.EmpresaID,
		Codigo:       dto.Codigo,
		Nombre:       dto.Nombre,
		Tipo:         dto.Tipo,
		UnidadMedida: dto.UnidadMedida,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCodigo
		}
		return nil, s.storeError("create insumo", err)
	}

	s.logger.Info("insumo created", "id", row.ID, "codigo", row.Codigo, "empresa_id", p.EmpresaID)
	return FromDataModel(row), nil
}

func (s *Service) Get(ctx context.Context, p *access.Principal, id int64) (*Insumo, error) {
	row, err := s.load(ctx, p.EmpresaID, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) List(ctx context.Context, p *access.Principal, onlyActive bool) ([]*Insumo, error) {
	rows, err := s.repo.List(ctx, p.EmpresaID, onlyActive)
	if err != nil {
		return nil, s.storeError("list insumos", err)
	}
	out := make([]*Insumo, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromDataModel(r))
	}
	return out, nil
}

// Deactivate hides the insumo from new applications. Existing stock and
// history are kept.
func (s *Service) Deactivate(ctx context.Context, p *access.Principal, id int64) error {
	if _, err := s.load(ctx, p.EmpresaID, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return s.storeError("deactivate insumo", err)
	}
	s.logger.Info("insumo deactivated", "id", id, "empresa_id", p.EmpresaID, "user_id", p.UserID)
	return nil
}

func (s *Service) RegisterEntrada(ctx context.Context, p *access.Principal, insumoID int64, dto RegisterEntradaDTO) (*Entrada, error) {
	dates, err := dto.validate()
	if err != nil {
		return nil, err
	}

	row, err := s.load(ctx, p.EmpresaID, insumoID)
	if err != nil {
		return nil, err
	}
	if !row.IsActive {
		return nil, ErrInsumoInactive
	}

	entrada := &registroDatamodel.Entrada{
		EmpresaID:        p.EmpresaID,
		InsumoID:         insumoID,
		Lote:             dto.Lote,
		FechaVencimiento: dates.vencimiento,
		Cantidad:         dto.Cantidad,
		FechaEntrada:     dates.entrada,
	}
	stock, err := s.repo.AddEntrada(ctx, entrada)
	if err != nil {
		return nil, s.storeError("add entrada", err)
	}

	s.logger.Info("entrada registered",
		"insumo_id", insumoID,
		"lote", entrada.Lote,
		"cantidad", entrada.Cantidad,
		"stock", stock)
	s.stockChanged(ctx, p.EmpresaID, insumoID, entrada.Cantidad, stock)
	return EntradaFromDataModel(entrada), nil
}

func (s *Service) ListEntradas(ctx context.Context, p *access.Principal, insumoID int64) ([]*Entrada, error) {
	if _, err := s.load(ctx, p.EmpresaID, insumoID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListEntradas(ctx, insumoID)
	if err != nil {
		return nil, s.storeError("list entradas", err)
	}
	out := make([]*Entrada, 0, len(rows))
	for _, r := range rows {
		out = append(out, EntradaFromDataModel(r))
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, empresaID, id int64) (*registroDatamodel.Insumo, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError("get insumo", err)
	}
	if row == nil {
		return nil, ErrInsumoNotFound
	}
	if err := tenant.Guard(empresaID, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *Service) stockChanged(ctx context.Context, empresaID, insumoID, delta, stock int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewStockChangedEvent(empresaID, insumoID, delta, stock)); err != nil {
		s.logger.Warn("failed to publish stock change", "insumo_id", insumoID, "error", err)
	}
}

func (s *Service) storeError(op string, err error) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	s.logger.Error("insumo store failure", "op", op, "error", err)
	return internal.NewDependencyError("insumo store unavailable", err)
}
