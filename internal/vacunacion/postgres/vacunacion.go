package postgres

import (
	"context"
	"errors"

	registroDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/registro"
	"github.com/frahmantamala/vaccination-registry/internal/insumo"
	"github.com/frahmantamala/vaccination-registry/internal/vacunacion"
	"gorm.io/gorm"
)

type VacunacionRepository struct {
	db *gorm.DB
}

func NewVacunacionRepository(db *gorm.DB) vacunacion.Repository {
	return &VacunacionRepository{db: db}
}

func (r *VacunacionRepository) Transaction(ctx context.Context, fn func(repo vacunacion.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&VacunacionRepository{db: tx})
	})
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

func (r *VacunacionRepository) GetByID(ctx context.Context, id int64) (*registroDatamodel.RegistroVacunacion, error) {
	return first[registroDatamodel.RegistroVacunacion](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *VacunacionRepository) ListByPaciente(ctx context.Context, pacienteID int64) ([]*registroDatamodel.RegistroVacunacion, error) {
	var rows []*registroDatamodel.RegistroVacunacion
	err := r.db.WithContext(ctx).
		Where("paciente_id = ?", pacienteID).
		Order("fecha_atencion DESC, id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *VacunacionRepository) Create(ctx context.Context, row *registroDatamodel.RegistroVacunacion) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *VacunacionRepository) Update(ctx context.Context, row *registroDatamodel.RegistroVacunacion) error {
	return r.db.WithContext(ctx).Save(row).Error
}

func (r *VacunacionRepository) Delete(ctx context.Context, id int64) ([]vacunacion.StockMovement, error) {
	var movements []vacunacion.StockMovement
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var applied []struct {
			InsumoID int64
			Doses    int64
		}
		err := tx.Model(&registroDatamodel.VacunaAplicada{}).
			Select("insumo_id, COUNT(*) AS doses").
			Where("registro_vacunacion_id = ? AND insumo_id IS NOT NULL", id).
			Group("insumo_id").
			Order("insumo_id").
			Scan(&applied).Error
		if err != nil {
			return err
		}

		for _, a := range applied {
			err := tx.Model(&registroDatamodel.Insumo{}).
				Where("id = ?", a.InsumoID).
				Update("stock", gorm.Expr("stock + ?", a.Doses)).Error
			if err != nil {
				return err
			}
			stock, err := currentStock(tx, a.InsumoID)
			if err != nil {
				return err
			}
			movements = append(movements, vacunacion.StockMovement{InsumoID: a.InsumoID, Delta: a.Doses, Stock: stock})
		}

		if err := tx.Where("registro_vacunacion_id = ?", id).Delete(&registroDatamodel.VacunaAplicada{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&registroDatamodel.RegistroVacunacion{}).Error
	})
	if err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *VacunacionRepository) ListVacunas(ctx context.Context, registroIDs ...int64) ([]*registroDatamodel.VacunaAplicada, error) {
	var rows []*registroDatamodel.VacunaAplicada
	if len(registroIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Where("registro_vacunacion_id IN ?", registroIDs).
		Order("fecha_aplicacion ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *VacunacionRepository) GetEntrada(ctx context.Context, id int64) (*registroDatamodel.Entrada, error) {
	return first[registroDatamodel.Entrada](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *VacunacionRepository) ApplyVacuna(ctx context.Context, v *registroDatamodel.VacunaAplicada) (vacunacion.StockMovement, error) {
	movement := vacunacion.StockMovement{InsumoID: *v.InsumoID, Delta: -1}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&registroDatamodel.Insumo{}).
			Where("id = ? AND stock >= 1", *v.InsumoID).
			Update("stock", gorm.Expr("stock - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return insumo.ErrInsufficientStock
		}
		if err := tx.Create(v).Error; err != nil {
			return err
		}
		stock, err := currentStock(tx, *v.InsumoID)
		if err != nil {
			return err
		}
		movement.Stock = stock
		return nil
	})
	return movement, err
}

func currentStock(tx *gorm.DB, insumoID int64) (int64, error) {
	var row registroDatamodel.Insumo
	if err := tx.Select("id", "stock").Where("id = ?", insumoID).First(&row).Error; err != nil {
		return 0, err
	}
	return row.Stock, nil
}
