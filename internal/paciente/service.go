package paciente

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/catalog"
	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	registroDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/registro"
	"github.com/frahmantamala/vaccination-registry/internal/tenant"
	"gorm.io/gorm"
)

type ListFilter struct {
	Search string
	Limit  int
	Offset int
}

// Repository getters return nil, nil when the row does not exist.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*registroDatamodel.Paciente, error)
	GetByIdentificacion(ctx context.Context, empresaID int64, tipo, numero string) (*registroDatamodel.Paciente, error)
	// List with a non-positive limit returns every match.
	List(ctx context.Context, empresaID int64, filter ListFilter) ([]*registroDatamodel.Paciente, int64, error)
	Create(ctx context.Context, p *registroDatamodel.Paciente) error
	Update(ctx context.Context, p *registroDatamodel.Paciente) error
	CountRegistros(ctx context.Context, pacienteID int64) (int64, error)
	// Delete removes the paciente with its antecedentes.
	Delete(ctx context.Context, id int64) error

	GetAntecedente(ctx context.Context, id int64) (*registroDatamodel.AntecedenteMedico, error)
	ListAntecedentes(ctx context.Context, pacienteID int64) ([]*registroDatamodel.AntecedenteMedico, error)
	CreateAntecedente(ctx context.Context, a *registroDatamodel.AntecedenteMedico) error
	DeleteAntecedente(ctx context.Context, id int64) error
}

// ReferenceChecker validates optional catalog foreign keys.
type ReferenceChecker interface {
	CheckReference(ctx context.Context, empresaID int64, kind catalog.Kind, id *int64) error
}

type Service struct {
	repo   Repository
	refs   ReferenceChecker
	logger *slog.Logger
}

func NewService(repo Repository, refs ReferenceChecker, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		refs:   refs,
		logger: logger,
	}
}

func (s *Service) Create(ctx context.Context, p *access.Principal, dto PacienteDTO) (*Paciente, error) {
	fecha, err := dto.Validate()
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, p.EmpresaID, dto); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByIdentificacion(ctx, p.EmpresaID, dto.TipoIdentificacion, dto.NumeroIdentificacion)
	if err != nil {
		return nil, s.storeError("get paciente by identificacion", err)
	}
	if existing != nil {
		return nil, ErrDuplicateIdentificacion
	}

	row := &registroDatamodel.Paciente{EmpresaID: p.EmpresaID}
	apply(row, dto, fecha)
	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateIdentificacion
		}
		return nil, s.storeError("create paciente", err)
	}

	s.logger.Info("paciente created", "id", row.ID, "empresa_id", p.EmpresaID, "user_id", p.UserID)
	return FromDataModel(row), nil
}

func (s *Service) Get(ctx context.Context, p *access.Principal, id int64) (*Paciente, error) {
	row, err := s.load(ctx, p.EmpresaID, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) List(ctx context.Context, p *access.Principal, filter ListFilter) ([]*Paciente, int64, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	rows, total, err := s.repo.List(ctx, p.EmpresaID, filter)
	if err != nil {
		return nil, 0, s.storeError("list pacientes", err)
	}

	out := make([]*Paciente, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromDataModel(r))
	}
	return out, total, nil
}

// ListAll returns every paciente of the caller's tenant, for export.
func (s *Service) ListAll(ctx context.Context, p *access.Principal) ([]*Paciente, error) {
	out, _, err := s.List(ctx, p, ListFilter{})
	return out, err
}

func (s *Service) Update(ctx context.Context, p *access.Principal, id int64, dto PacienteDTO) (*Paciente, error) {
	fecha, err := dto.Validate()
	if err != nil {
		return nil, err
	}

	row, err := s.load(ctx, p.EmpresaID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, p.EmpresaID, dto); err != nil {
		return nil, err
	}

	if row.TipoIdentificacion != dto.TipoIdentificacion || row.NumeroIdentificacion != dto.NumeroIdentificacion {
		existing, err := s.repo.GetByIdentificacion(ctx, p.EmpresaID, dto.TipoIdentificacion, dto.NumeroIdentificacion)
		if err != nil {
			return nil, s.storeError("get paciente by identificacion", err)
		}
		if existing != nil && existing.ID != row.ID {
			return nil, ErrDuplicateIdentificacion
		}
	}

	apply(row, dto, fecha)
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, s.storeError("update paciente", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, p *access.Principal, id int64) error {
	if _, err := s.load(ctx, p.EmpresaID, id); err != nil {
		return err
	}

	n, err := s.repo.CountRegistros(ctx, id)
	if err != nil {
		return s.storeError("count registros", err)
	}
	if n > 0 {
		return ErrPacienteHasRegistros.WithDetails(map[string]interface{}{"registros": n})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storeError("delete paciente", err)
	}
	s.logger.Info("paciente deleted", "id", id, "empresa_id", p.EmpresaID, "user_id", p.UserID)
	return nil
}

func (s *Service) AddAntecedente(ctx context.Context, p *access.Principal, pacienteID int64, dto CreateAntecedenteDTO) (*Antecedente, error) {
	fecha, err := dto.Validate()
	if err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, p.EmpresaID, pacienteID); err != nil {
		return nil, err
	}

	row := &registroDatamodel.AntecedenteMedico{
		EmpresaID:        p.EmpresaID,
		PacienteID:       pacienteID,
		Tipo:             dto.Tipo,
		Descripcion:      dto.Descripcion,
		FechaDiagnostico: fecha,
	}
	if err := s.repo.CreateAntecedente(ctx, row); err != nil {
		return nil, s.storeError("create antecedente", err)
	}
	return AntecedenteFromDataModel(row), nil
}

func (s *Service) ListAntecedentes(ctx context.Context, p *access.Principal, pacienteID int64) ([]*Antecedente, error) {
	if _, err := s.load(ctx, p.EmpresaID, pacienteID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListAntecedentes(ctx, pacienteID)
	if err != nil {
		return nil, s.storeError("list antecedentes", err)
	}

	out := make([]*Antecedente, 0, len(rows))
	for _, r := range rows {
		out = append(out, AntecedenteFromDataModel(r))
	}
	return out, nil
}

func (s *Service) DeleteAntecedente(ctx context.Context, p *access.Principal, pacienteID, antecedenteID int64) error {
	row, err := s.repo.GetAntecedente(ctx, antecedenteID)
	if err != nil {
		return s.storeError("get antecedente", err)
	}
	if row == nil || row.PacienteID != pacienteID {
		return ErrAntecedenteNotFound
	}
	if err := tenant.Guard(p.EmpresaID, row); err != nil {
		return err
	}
	if err := s.repo.DeleteAntecedente(ctx, antecedenteID); err != nil {
		return s.storeError("delete antecedente", err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, empresaID, id int64) (*registroDatamodel.Paciente, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError("get paciente", err)
	}
	if row == nil {
		return nil, ErrPacienteNotFound
	}
	if err := tenant.Guard(empresaID, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *Service) checkReferences(ctx context.Context, empresaID int64, dto PacienteDTO) error {
	refs := []struct {
		kind catalog.Kind
		id   *int64
	}{
		{catalog.KindTipoCarnet, dto.TipoCarnetID},
		{catalog.KindCondicionUsuaria, dto.CondicionUsuariaID},
		{catalog.KindPertenenciaEtnica, dto.PertenenciaEtnicaID},
		{catalog.KindAseguradora, dto.AseguradoraID},
		{catalog.KindRegimenAfiliacion, dto.RegimenAfiliacionID},
	}
	for _, r := range refs {
		if err := s.refs.CheckReference(ctx, empresaID, r.kind, r.id); err != nil {
			return err
		}
	}
	return nil
}

func apply(row *registroDatamodel.Paciente, dto PacienteDTO, fecha time.Time) {
	row.TipoIdentificacion = dto.TipoIdentificacion
	row.NumeroIdentificacion = dto.NumeroIdentificacion
	row.PrimerNombre = dto.PrimerNombre
	row.SegundoNombre = dto.SegundoNombre
	row.PrimerApellido = dto.PrimerApellido
	row.SegundoApellido = dto.SegundoApellido
	row.FechaNacimiento = fecha
	row.Sexo = dto.Sexo
	row.Telefono = dto.Telefono
	row.Direccion = dto.Direccion
	row.TipoCarnetID = dto.TipoCarnetID
	row.CondicionUsuariaID = dto.CondicionUsuariaID
	row.PertenenciaEtnicaID = dto.PertenenciaEtnicaID
	row.AseguradoraID = dto.AseguradoraID
	row.RegimenAfiliacionID = dto.RegimenAfiliacionID
}

func (s *Service) storeError(op string, err error) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	s.logger.Error("paciente store failure", "op", op, "error", err)
	return internal.NewDependencyError("paciente store unavailable", err)
}
