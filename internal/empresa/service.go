package empresa

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/vaccination-registry/internal"
	empresaDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/empresa"
	"github.com/frahmantamala/vaccination-registry/internal/core/events"
	"github.com/frahmantamala/vaccination-registry/internal/tenant"
	"gorm.io/gorm"
)

// Repository getters return nil, nil when the row does not exist.
type Repository interface {
	Get(ctx context.Context, id int64) (*empresaDatamodel.Empresa, error)
	GetByCodigo(ctx context.Context, codigo string) (*empresaDatamodel.Empresa, error)
	List(ctx context.Context) ([]*empresaDatamodel.Empresa, error)
	Create(ctx context.Context, e *empresaDatamodel.Empresa) error
	Update(ctx context.Context, e *empresaDatamodel.Empresa) error
	SetEstado(ctx context.Context, id int64, estado bool) error
	CountDependents(ctx context.Context, id int64) (Dependents, error)
	Delete(ctx context.Context, id int64) error
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

// Create registers a new tenant. Only reachable from the CLI.
func (s *Service) Create(ctx context.Context, dto CreateEmpresaDTO) (*Empresa, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByCodigo(ctx, dto.Codigo)
	if err != nil {
		return nil, s.storeError("get empresa by codigo", err)
	}
	if existing != nil {
		return nil, ErrDuplicateCodigo
	}

	e := &empresaDatamodel.Empresa{
		Codigo:      dto.Codigo,
		RazonSocial: dto.RazonSocial,
		NIT:         dto.NIT,
		Email:       dto.Email,
		Telefono:    dto.Telefono,
		Direccion:   dto.Direccion,
		Estado:      true,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCodigo
		}
		return nil, s.storeError("create empresa", err)
	}

	s.logger.Info("empresa created", "empresa_id", e.ID, "codigo", e.Codigo)
	return FromDataModel(e), nil
}

func (s *Service) List(ctx context.Context) ([]*Empresa, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.storeError("list empresas", err)
	}
	out := make([]*Empresa, 0, len(rows))
	for _, e := range rows {
		out = append(out, FromDataModel(e))
	}
	return out, nil
}

// GetCurrent returns the caller's own tenant.
func (s *Service) GetCurrent(ctx context.Context, empresaID int64) (*Empresa, error) {
	e, err := s.load(ctx, empresaID, empresaID)
	if err != nil {
		return nil, err
	}
	return FromDataModel(e), nil
}

func (s *Service) UpdateCurrent(ctx context.Context, empresaID int64, dto UpdateEmpresaDTO) (*Empresa, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	e, err := s.load(ctx, empresaID, empresaID)
	if err != nil {
		return nil, err
	}

	e.RazonSocial = dto.RazonSocial
	e.NIT = dto.NIT
	e.Email = dto.Email
	e.Telefono = dto.Telefono
	e.Direccion = dto.Direccion
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, s.storeError("update empresa", err)
	}
	return FromDataModel(e), nil
}

// SetEstado soft disables or re-enables a tenant. A disabled tenant resolves
// to no access for all its users, so cached authorizations are dropped.
func (s *Service) SetEstado(ctx context.Context, callerEmpresaID, empresaID int64, estado bool) error {
	if _, err := s.load(ctx, callerEmpresaID, empresaID); err != nil {
		return err
	}

	if err := s.repo.SetEstado(ctx, empresaID, estado); err != nil {
		return s.storeError("set empresa estado", err)
	}

	s.logger.Info("empresa estado changed", "empresa_id", empresaID, "estado", estado)
	if s.publisher != nil {
		if err := s.publisher.PublishSync(ctx, events.NewAccessChangedEvent(empresaID, "empresa.estado")); err != nil {
			s.logger.Error("failed to publish access change", "empresa_id", empresaID, "error", err)
		}
	}
	return nil
}

// Delete removes a tenant that no longer owns users, roles or pacientes.
func (s *Service) Delete(ctx context.Context, empresaID int64) error {
	e, err := s.repo.Get(ctx, empresaID)
	if err != nil {
		return s.storeError("get empresa", err)
	}
	if e == nil {
		return ErrEmpresaNotFound
	}

	deps, err := s.repo.CountDependents(ctx, empresaID)
	if err != nil {
		return s.storeError("count empresa dependents", err)
	}
	if deps.Any() {
		return ErrEmpresaHasRecords.WithDetails(deps)
	}

	if err := s.repo.Delete(ctx, empresaID); err != nil {
		return s.storeError("delete empresa", err)
	}
	s.logger.Info("empresa deleted", "empresa_id", empresaID)
	return nil
}

func (s *Service) load(ctx context.Context, callerEmpresaID, empresaID int64) (*empresaDatamodel.Empresa, error) {
	e, err := s.repo.Get(ctx, empresaID)
	if err != nil {
		return nil, s.storeError("get empresa", err)
	}
	if e == nil {
		return nil, ErrEmpresaNotFound
	}
	if err := tenant.Guard(callerEmpresaID, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) storeError(op string, err error) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	s.logger.Error("empresa store failure", "op", op, "error", err)
	return internal.NewDependencyError("empresa store unavailable", err)
}
