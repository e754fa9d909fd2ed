package vacunacion

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/catalog"
	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	registroDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/registro"
	"github.com/frahmantamala/vaccination-registry/internal/core/events"
	"github.com/frahmantamala/vaccination-registry/internal/insumo"
	"github.com/frahmantamala/vaccination-registry/internal/paciente"
	"github.com/frahmantamala/vaccination-registry/internal/tenant"
)

// Repository getters return nil, nil when the row does not exist.
type Repository interface {
	// Transaction runs fn against a repository bound to one transaction.
	Transaction(ctx context.Context, fn func(repo Repository) error) error

	GetByID(ctx context.Context, id int64) (*registroDatamodel.RegistroVacunacion, error)
	ListByPaciente(ctx context.Context, pacienteID int64) ([]*registroDatamodel.RegistroVacunacion, error)
	Create(ctx context.Context, r *registroDatamodel.RegistroVacunacion) error
	Update(ctx context.Context, r *registroDatamodel.RegistroVacunacion) error
	// Delete removes the registro with its vacunas aplicadas and gives their
	// doses back to stock.
	Delete(ctx context.Context, id int64) ([]StockMovement, error)

	ListVacunas(ctx context.Context, registroIDs ...int64) ([]*registroDatamodel.VacunaAplicada, error)
	GetEntrada(ctx context.Context, id int64) (*registroDatamodel.Entrada, error)
	// ApplyVacuna takes one dose from the insumo and stores the vacuna in one
	// transaction. It fails with insumo.ErrInsufficientStock on empty stock.
	ApplyVacuna(ctx context.Context, v *registroDatamodel.VacunaAplicada) (StockMovement, error)
}

type PacienteLookup interface {
	Get(ctx context.Context, p *access.Principal, id int64) (*paciente.Paciente, error)
}

type InsumoLookup interface {
	Get(ctx context.Context, p *access.Principal, id int64) (*insumo.Insumo, error)
}

type ReferenceChecker interface {
	CheckReference(ctx context.Context, empresaID int64, kind catalog.Kind, id *int64) error
}

type Service struct {
	repo      Repository
	pacientes PacienteLookup
	insumos   InsumoLookup
	refs      ReferenceChecker
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, pacientes PacienteLookup, insumos InsumoLookup, refs ReferenceChecker, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		pacientes: pacientes,
		insumos:   insumos,
		refs:      refs,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) Create(ctx context.Context, p *access.Principal, dto RegistroDTO) (*Registro, error) {
	fecha, err := dto.Validate()
	if err != nil {
		return nil, err
	}
	if _, err := s.pacientes.Get(ctx, p, dto.PacienteID); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, p.EmpresaID, dto); err != nil {
		return nil, err
	}

	creator := p.UserID
	row := &registroDatamodel.RegistroVacunacion{
		EmpresaID:   p.EmpresaID,
		PacienteID:  dto.PacienteID,
		CreadoPorID: &creator,
	}
	apply(row, dto, fecha)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, s.storeError("create registro", err)
	}

	s.logger.Info("registro de vacunacion created",
		"id", row.ID,
		"paciente_id", row.PacienteID,
		"empresa_id", p.EmpresaID,
		"user_id", p.UserID)
	return FromDataModel(row, nil), nil
}

func (s *Service) Get(ctx context.Context, p *access.Principal, id int64) (*Registro, error) {
	row, err := s.load(ctx, p.EmpresaID, id)
	if err != nil {
		return nil, err
	}
	vacunas, err := s.repo.ListVacunas(ctx, row.ID)
	if err != nil {
		return nil, s.storeError("list vacunas", err)
	}
	return FromDataModel(row, vacunas), nil
}

func (s *Service) ListByPaciente(ctx context.Context, p *access.Principal, pacienteID int64) ([]*Registro, error) {
	if _, err := s.pacientes.Get(ctx, p, pacienteID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByPaciente(ctx, pacienteID)
	if err != nil {
		return nil, s.storeError("list registros", err)
	}
	if len(rows) == 0 {
		return []*Registro{}, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	vacunas, err := s.repo.ListVacunas(ctx, ids...)
	if err != nil {
		return nil, s.storeError("list vacunas", err)
	}
	byRegistro := make(map[int64][]*registroDatamodel.VacunaAplicada, len(rows))
	for _, v := range vacunas {
		byRegistro[v.RegistroVacunacionID] = append(byRegistro[v.RegistroVacunacionID], v)
	}

	out := make([]*Registro, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromDataModel(r, byRegistro[r.ID]))
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, p *access.Principal, id int64, dto RegistroDTO) (*Registro, error) {
	fecha, err := dto.Validate()
	if err != nil {
		return nil, err
	}
	row, err := s.load(ctx, p.EmpresaID, id)
	if err != nil {
		return nil, err
	}
	if dto.PacienteID != row.PacienteID {
		return nil, internal.NewValidationFieldError("paciente_id", "paciente_id cannot change", internal.ErrCodeValidationFailed)
	}
	if err := s.checkReferences(ctx, p.EmpresaID, dto); err != nil {
		return nil, err
	}

	modifier := p.UserID
	row.ModificadoPorID = &modifier
	apply(row, dto, fecha)
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, s.storeError("update registro", err)
	}
	return s.Get(ctx, p, id)
}

// Delete guards and removes the registro in one transaction.
func (s *Service) Delete(ctx context.Context, p *access.Principal, id int64) error {
	var movements []StockMovement
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		if _, err := s.loadFrom(ctx, repo, p.EmpresaID, id); err != nil {
			return err
		}
		var err error
		movements, err = repo.Delete(ctx, id)
		if err != nil {
			return s.storeError("delete registro", err)
		}
		return nil
	})
	if err != nil {
		return s.storeError("delete registro", err)
	}

	s.logger.Info("registro de vacunacion deleted", "id", id, "empresa_id", p.EmpresaID, "user_id", p.UserID)
	for _, m := range movements {
		s.stockChanged(ctx, p.EmpresaID, m)
	}
	return nil
}

// AddVacunaAplicada records one applied dose and takes it from stock.
func (s *Service) AddVacunaAplicada(ctx context.Context, p *access.Principal, registroID int64, dto VacunaDTO) (*VacunaAplicada, error) {
	row, err := s.load(ctx, p.EmpresaID, registroID)
	if err != nil {
		return nil, err
	}
	fecha, err := dto.Validate(row.FechaAtencion)
	if err != nil {
		return nil, err
	}

	ins, err := s.insumos.Get(ctx, p, dto.InsumoID)
	if err != nil {
		return nil, err
	}
	if !ins.IsActive {
		return nil, insumo.ErrInsumoInactive
	}
	if ins.Tipo != insumo.TipoVacuna {
		return nil, ErrInsumoNotVacuna
	}

	if dto.EntradaID != nil {
		entrada, err := s.repo.GetEntrada(ctx, *dto.EntradaID)
		if err != nil {
			return nil, s.storeError("get entrada", err)
		}
		if entrada == nil {
			return nil, ErrEntradaNotFound
		}
		if err := tenant.Guard(p.EmpresaID, entrada); err != nil {
			return nil, err
		}
		if entrada.InsumoID != ins.ID {
			return nil, ErrEntradaMismatch
		}
		if entrada.FechaVencimiento.Before(fecha) {
			return nil, ErrEntradaExpired
		}
	}

	insumoID := ins.ID
	v := &registroDatamodel.VacunaAplicada{
		EmpresaID:            p.EmpresaID,
		RegistroVacunacionID: registroID,
		InsumoID:             &insumoID,
		EntradaID:            dto.EntradaID,
		Dosis:                dto.Dosis,
		ViaAdministracion:    dto.ViaAdministracion,
		FechaAplicacion:      fecha,
	}
	movement, err := s.repo.ApplyVacuna(ctx, v)
	if err != nil {
		if internal.IsType(err, internal.ErrorTypeConflict) {
			s.logger.Warn("vaccine not applied", "insumo_id", insumoID, "error", err)
		}
		return nil, s.storeError("apply vacuna", err)
	}

	s.logger.Info("vacuna aplicada",
		"registro_id", registroID,
		"insumo_id", insumoID,
		"dosis", v.Dosis,
		"stock", movement.Stock)
	s.stockChanged(ctx, p.EmpresaID, movement)
	return VacunaFromDataModel(v), nil
}

func (s *Service) load(ctx context.Context, empresaID, id int64) (*registroDatamodel.RegistroVacunacion, error) {
	return s.loadFrom(ctx, s.repo, empresaID, id)
}

func (s *Service) loadFrom(ctx context.Context, repo Repository, empresaID, id int64) (*registroDatamodel.RegistroVacunacion, error) {
	row, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError("get registro", err)
	}
	if row == nil {
		return nil, ErrRegistroNotFound
	}
	if err := tenant.Guard(empresaID, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *Service) checkReferences(ctx context.Context, empresaID int64, dto RegistroDTO) error {
	refs := []struct {
		kind catalog.Kind
		id   *int64
	}{
		{catalog.KindHospital, dto.HospitalID},
		{catalog.KindCentroAtencion, dto.CentroAtencionID},
		{catalog.KindAseguradora, dto.AseguradoraID},
		{catalog.KindRegimenAfiliacion, dto.RegimenAfiliacionID},
		{catalog.KindTipoCarnet, dto.TipoCarnetID},
		{catalog.KindCondicionUsuaria, dto.CondicionUsuariaID},
		{catalog.KindPertenenciaEtnica, dto.PertenenciaEtnicaID},
	}
	for _, r := range refs {
		if err := s.refs.CheckReference(ctx, empresaID, r.kind, r.id); err != nil {
			return err
		}
	}
	return nil
}

func apply(row *registroDatamodel.RegistroVacunacion, dto RegistroDTO, fecha time.Time) {
	row.FechaAtencion = fecha
	row.Observaciones = dto.Observaciones
	row.HospitalID = dto.HospitalID
	row.CentroAtencionID = dto.CentroAtencionID
	row.AseguradoraID = dto.AseguradoraID
	row.RegimenAfiliacionID = dto.RegimenAfiliacionID
	row.TipoCarnetID = dto.TipoCarnetID
	row.CondicionUsuariaID = dto.CondicionUsuariaID
	row.PertenenciaEtnicaID = dto.PertenenciaEtnicaID
}

func (s *Service) stockChanged(ctx context.Context, empresaID int64, m StockMovement) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewStockChangedEvent(empresaID, m.InsumoID, m.Delta, m.Stock)); err != nil {
		s.logger.Warn("failed to publish stock change", "insumo_id", m.InsumoID, "error", err)
	}
}

func (s *Service) storeError(op string, err error) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	s.logger.Error("vacunacion store failure", "op", op, "error", err)
	return internal.NewDependencyError("vacunacion store unavailable", err)
}
