package postgres

import (
	"context"
	"errors"

	registroDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/registro"
	"github.com/frahmantamala/vaccination-registry/internal/paciente"
	"gorm.io/gorm"
)

type PacienteRepository struct {
	db *gorm.DB
}

func NewPacienteRepository(db *gorm.DB) paciente.Repository {
	return &PacienteRepository{db: db}
}

func first[T any](q *gorm.DB) (*T, error) {
	var out T
	if err := q.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *PacienteRepository) GetByID(ctx context.Context, id int64) (*registroDatamodel.Paciente, error) {
	return first[registroDatamodel.Paciente](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *PacienteRepository) GetByIdentificacion(ctx context.Context, empresaID int64, tipo, numero string) (*registroDatamodel.Paciente, error) {
	return first[registroDatamodel.Paciente](r.db.WithContext(ctx).
		Where("empresa_id = ? AND tipo_identificacion = ? AND numero_identificacion = ?", empresaID, tipo, numero))
}

func (r *PacienteRepository) List(ctx context.Context, empresaID int64, filter paciente.ListFilter) ([]*registroDatamodel.Paciente, int64, error) {
	q := r.db.WithContext(ctx).Model(&registroDatamodel.Paciente{}).Where("empresa_id = ?", empresaID)
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("numero_identificacion LIKE ? OR primer_nombre LIKE ? OR primer_apellido LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Order("primer_apellido ASC, primer_nombre ASC, id ASC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var rows []*registroDatamodel.Paciente
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *PacienteRepository) Create(ctx context.Context, p *registroDatamodel.Paciente) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PacienteRepository) Update(ctx context.Context, p *registroDatamodel.Paciente) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PacienteRepository) CountRegistros(ctx context.Context, pacienteID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&registroDatamodel.RegistroVacunacion{}).
		Where("paciente_id = ?", pacienteID).
		Count(&n).Error
	return n, err
}

func (r *PacienteRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("paciente_id = ?", id).Delete(&registroDatamodel.AntecedenteMedico{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&registroDatamodel.Paciente{}).Error
	})
}

func (r *PacienteRepository) GetAntecedente(ctx context.Context, id int64) (*registroDatamodel.AntecedenteMedico, error) {
	return first[registroDatamodel.AntecedenteMedico](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *PacienteRepository) ListAntecedentes(ctx context.Context, pacienteID int64) ([]*registroDatamodel.AntecedenteMedico, error) {
	var rows []*registroDatamodel.AntecedenteMedico
	err := r.db.WithContext(ctx).
		Where("paciente_id = ?", pacienteID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *PacienteRepository) CreateAntecedente(ctx context.Context, a *registroDatamodel.AntecedenteMedico) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *PacienteRepository) DeleteAntecedente(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&registroDatamodel.AntecedenteMedico{}).Error
}
