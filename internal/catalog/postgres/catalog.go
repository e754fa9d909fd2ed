package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/vaccination-registry/internal/catalog"
	registroDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/registro"
	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) catalog.RepositoryAPI {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) table(ctx context.Context, kind catalog.Kind) *gorm.DB {
	return r.db.WithContext(ctx).Table(kind.Table())
}

func (r *CatalogRepository) GetAll(ctx context.Context, kind catalog.Kind, empresaID int64, onlyActive bool) ([]*registroDatamodel.CatalogEntry, error) {
	var entries []*registroDatamodel.CatalogEntry
	q := r.table(ctx, kind).Where("empresa_id = ?", empresaID)
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("nombre ASC").Find(&entries).Error
	return entries, err
}

func (r *CatalogRepository) GetByID(ctx context.Context, kind catalog.Kind, id int64) (*registroDatamodel.CatalogEntry, error) {
	return r.first(r.table(ctx, kind).Where("id = ?", id))
}

func (r *CatalogRepository) GetByCodigo(ctx context.Context, kind catalog.Kind, empresaID int64, codigo string) (*registroDatamodel.CatalogEntry, error) {
	return r.first(r.table(ctx, kind).Where("empresa_id = ? AND codigo = ?", empresaID, codigo))
}

func (r *CatalogRepository) first(q *gorm.DB) (*registroDatamodel.CatalogEntry, error) {
	var entry registroDatamodel.CatalogEntry
	if err := q.Take(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *CatalogRepository) Create(ctx context.Context, kind catalog.Kind, entry *registroDatamodel.CatalogEntry) error {
	return r.table(ctx, kind).Create(entry).Error
}

func (r *CatalogRepository) Update(ctx context.Context, kind catalog.Kind, entry *registroDatamodel.CatalogEntry) error {
	return r.table(ctx, kind).
		Where("id = ?", entry.ID).
		Updates(map[string]interface{}{
			"nombre":     entry.Nombre,
			"is_active":  entry.IsActive,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}

func (r *CatalogRepository) Delete(ctx context.Context, kind catalog.Kind, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ref := range kind.References() {
			err := tx.Table(ref.Table).
				Where(ref.Column+" = ?", id).
				Update(ref.Column, nil).Error
			if err != nil {
				return err
			}
		}
		return tx.Table(kind.Table()).Where("id = ?", id).Delete(&registroDatamodel.CatalogEntry{}).Error
	})
}
