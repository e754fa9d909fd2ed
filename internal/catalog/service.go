package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/vaccination-registry/internal"
	registroDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/registro"
	"github.com/frahmantamala/vaccination-registry/internal/tenant"
	"gorm.io/gorm"
)

// RepositoryAPI addresses the table of each kind. Getters return nil, nil
// when the row does not exist.
type RepositoryAPI interface {
	GetAll(ctx context.Context, kind Kind, empresaID int64, onlyActive bool) ([]*registroDatamodel.CatalogEntry, error)
	GetByID(ctx context.Context, kind Kind, id int64) (*registroDatamodel.CatalogEntry, error)
	GetByCodigo(ctx context.Context, kind Kind, empresaID int64, codigo string) (*registroDatamodel.CatalogEntry, error)
	Create(ctx context.Context, kind Kind, entry *registroDatamodel.CatalogEntry) error
	Update(ctx context.Context, kind Kind, entry *registroDatamodel.CatalogEntry) error
	// Delete nulls every reference to the entry before removing it.
	Delete(ctx context.Context, kind Kind, id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, empresaID int64, kind Kind, onlyActive bool) ([]*Entry, error) {
	rows, err := s.repo.GetAll(ctx, kind, empresaID, onlyActive)
	if err != nil {
		return nil, s.storeError("list catalog", err)
	}

	entries := make([]*Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, FromDataModel(kind, r))
	}
	s.logger.Debug("retrieved catalog entries", "kind", kind, "count", len(entries))
	return entries, nil
}

func (s *Service) Get(ctx context.Context, empresaID int64, kind Kind, id int64) (*Entry, error) {
	row, err := s.load(ctx, empresaID, kind, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(kind, row), nil
}

func (s *Service) Create(ctx context.Context, empresaID int64, kind Kind, dto CreateEntryDTO) (*Entry, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByCodigo(ctx, kind, empresaID, dto.Codigo)
	if err != nil {
		return nil, s.storeError("get catalog entry by codigo", err)
	}
	if existing != nil {
		return nil, ErrDuplicateCode
	}

	row := &registroDatamodel.CatalogEntry{
		EmpresaID: empresaID,
		Codigo:    dto.Codigo,
		Nombre:    dto.Nombre,
		IsActive:  true,
	}
	if err := s.repo.Create(ctx, kind, row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCode
		}
		return nil, s.storeError("create catalog entry", err)
	}

	s.logger.Info("catalog entry created", "kind", kind, "id", row.ID, "empresa_id", empresaID)
	return FromDataModel(kind, row), nil
}

func (s *Service) Update(ctx context.Context, empresaID int64, kind Kind, id int64, dto UpdateEntryDTO) (*Entry, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.load(ctx, empresaID, kind, id)
	if err != nil {
		return nil, err
	}

	row.Nombre = dto.Nombre
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}
	if err := s.repo.Update(ctx, kind, row); err != nil {
		return nil, s.storeError("update catalog entry", err)
	}
	return FromDataModel(kind, row), nil
}

func (s *Service) Delete(ctx context.Context, empresaID int64, kind Kind, id int64) error {
	if _, err := s.load(ctx, empresaID, kind, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return s.storeError("delete catalog entry", err)
	}
	s.logger.Info("catalog entry deleted", "kind", kind, "id", id, "empresa_id", empresaID)
	return nil
}

// CheckReference validates an optional foreign key held by another entity:
// a nil id passes, otherwise the entry must exist in the caller's tenant and
// be active.
func (s *Service) CheckReference(ctx context.Context, empresaID int64, kind Kind, id *int64) error {
	if id == nil {
		return nil
	}
	row, err := s.load(ctx, empresaID, kind, *id)
	if err != nil {
		return err
	}
	if !row.IsActive {
		return ErrEntryInactive.WithDetails(map[string]interface{}{"kind": kind, "id": *id})
	}
	return nil
}

func (s *Service) load(ctx context.Context, empresaID int64, kind Kind, id int64) (*registroDatamodel.CatalogEntry, error) {
	row, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, s.storeError("get catalog entry", err)
	}
	if row == nil {
		return nil, ErrEntryNotFound
	}
	if err := tenant.Guard(empresaID, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *Service) storeError(op string, err error) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	s.logger.Error("catalog store failure", "op", op, "error", err)
	return internal.NewDependencyError("catalog store unavailable", err)
}
