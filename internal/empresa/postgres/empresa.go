package postgres

import (
	"context"
	"errors"

	empresaDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/empresa"
	rbacDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/rbac"
	registroDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/registro"
	"github.com/frahmantamala/vaccination-registry/internal/empresa"
	"gorm.io/gorm"
)

type EmpresaRepository struct {
	db *gorm.DB
}

func NewEmpresaRepository(db *gorm.DB) empresa.Repository {
	return &EmpresaRepository{db: db}
}

func (r *EmpresaRepository) find(q *gorm.DB) (*empresaDatamodel.Empresa, error) {
	var e empresaDatamodel.Empresa
	if err := q.First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *EmpresaRepository) Get(ctx context.Context, id int64) (*empresaDatamodel.Empresa, error) {
	return r.find(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *EmpresaRepository) GetByCodigo(ctx context.Context, codigo string) (*empresaDatamodel.Empresa, error) {
	return r.find(r.db.WithContext(ctx).Where("codigo = ?", codigo))
}

func (r *EmpresaRepository) List(ctx context.Context) ([]*empresaDatamodel.Empresa, error) {
	var out []*empresaDatamodel.Empresa
	err := r.db.WithContext(ctx).Order("codigo ASC").Find(&out).Error
	return out, err
}

func (r *EmpresaRepository) Create(ctx context.Context, e *empresaDatamodel.Empresa) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EmpresaRepository) Update(ctx context.Context, e *empresaDatamodel.Empresa) error {
	return r.db.WithContext(ctx).Model(e).Select("razon_social", "nit", "email", "telefono", "direccion", "updated_at").Updates(e).Error
}

func (r *EmpresaRepository) SetEstado(ctx context.Context, id int64, estado bool) error {
	return r.db.WithContext(ctx).Model(&empresaDatamodel.Empresa{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *EmpresaRepository) CountDependents(ctx context.Context, id int64) (empresa.Dependents, error) {
	var deps empresa.Dependents
	q := r.db.WithContext(ctx)
	if err := q.Model(&rbacDatamodel.User{}).Where("empresa_id = ?", id).Count(&deps.Users).Error; err != nil {
		return deps, err
	}
	if err := q.Model(&rbacDatamodel.Role{}).Where("empresa_id = ?", id).Count(&deps.Roles).Error; err != nil {
		return deps, err
	}
	if err := q.Model(&registroDatamodel.Paciente{}).Where("empresa_id = ?", id).Count(&deps.Pacientes).Error; err != nil {
		return deps, err
	}
	return deps, nil
}

// Delete also drops the tenant's menu, permissions and catalogs, which are
// configuration rather than records.
func (r *EmpresaRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cleanup := []interface{}{
			&rbacDatamodel.RolePermission{},
			&rbacDatamodel.MenuItem{},
			&rbacDatamodel.Permission{},
			&registroDatamodel.Entrada{},
			&registroDatamodel.Insumo{},
			&registroDatamodel.TipoCarnet{},
			&registroDatamodel.CondicionUsuaria{},
			&registroDatamodel.PertenenciaEtnica{},
			&registroDatamodel.Aseguradora{},
			&registroDatamodel.RegimenAfiliacion{},
			&registroDatamodel.Hospital{},
			&registroDatamodel.CentroAtencion{},
		}
		for _, model := range cleanup {
			if err := tx.Where("empresa_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&empresaDatamodel.Empresa{}).Error
	})
}
