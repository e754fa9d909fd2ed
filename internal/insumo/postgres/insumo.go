package postgres

import (
	"context"
	"errors"

	registroDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/registro"
	"github.com/frahmantamala/vaccination-registry/internal/insumo"
	"gorm.io/gorm"
)

type InsumoRepository struct {
	db *gorm.DB
}

func NewInsumoRepository(db *gorm.DB) insumo.Repository {
	return &InsumoRepository{db: db}
}

func (r *InsumoRepository) take(q *gorm.DB) (*registroDatamodel.Insumo, error) {
	var row registroDatamodel.Insumo
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *InsumoRepository) GetByID(ctx context.Context, id int64) (*registroDatamodel.Insumo, error) {
	return r.take(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *InsumoRepository) GetByCodigo(ctx context.Context, empresaID int64, codigo string) (*registroDatamodel.Insumo, error) {
	return r.take(r.db.WithContext(ctx).Where("empresa_id = ? AND codigo = ?", empresaID, codigo))
}

func (r *InsumoRepository) List(ctx context.Context, empresaID int64, onlyActive bool) ([]*registroDatamodel.Insumo, error) {
	q := r.db.WithContext(ctx).Where("empresa_id = ?", empresaID)
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}
	var rows []*registroDatamodel.Insumo
	err := q.Order("nombre ASC, id ASC").Find(&rows).Error
	return rows, err
}

func (r *InsumoRepository) Create(ctx context.Context, i *registroDatamodel.Insumo) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *InsumoRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.db.WithContext(ctx).Model(&registroDatamodel.Insumo{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

func (r *InsumoRepository) AddEntrada(ctx context.Context, e *registroDatamodel.Entrada) (int64, error) {
	var stock int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(e).Error; err != nil {
			return err
		}
		err := tx.Model(&registroDatamodel.Insumo{}).
			Where("id = ?", e.InsumoID).
			Update("stock", gorm.Expr("stock + ?", e.Cantidad)).Error
		if err != nil {
			return err
		}
		var row registroDatamodel.Insumo
		if err := tx.Select("id", "stock").Where("id = ?", e.InsumoID).First(&row).Error; err != nil {
			return err
		}
		stock = row.Stock
		return nil
	})
	return stock, err
}

func (r *InsumoRepository) ListEntradas(ctx context.Context, insumoID int64) ([]*registroDatamodel.Entrada, error) {
	var rows []*registroDatamodel.Entrada
	err := r.db.WithContext(ctx).
		Where("insumo_id = ?", insumoID).
		Order("fecha_entrada DESC, id DESC").
		Find(&rows).Error
	return rows, err
}
