package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAccessChanged = "access.changed"
	EventTypeStockChanged  = "insumo.stock_changed"
)

// AccessChangedEvent is published after any mutation of roles, grants,
// role assignments or menu items of a tenant.
type AccessChangedEvent struct {
	BaseEvent
	EmpresaID int64  `json:"empresa_id"`
	Reason    string `json:"reason"`
}

func NewAccessChangedEvent(empresaID int64, reason string) *AccessChangedEvent {
	return &AccessChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAccessChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"empresa_id": empresaID,
				"reason":     reason,
			},
		},
		EmpresaID: empresaID,
		Reason:    reason,
	}
}

type StockChangedEvent struct {
	BaseEvent
	EmpresaID int64 `json:"empresa_id"`
	InsumoID  int64 `json:"insumo_id"`
	Delta     int64 `json:"delta"`
	Stock     int64 `json:"stock"`
}

func NewStockChangedEvent(empresaID, insumoID, delta, stock int64) *StockChangedEvent {
	return &StockChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeStockChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"empresa_id": empresaID,
				"insumo_id":  insumoID,
				"delta":      delta,
				"stock":      stock,
			},
		},
		EmpresaID: empresaID,
		InsumoID:  insumoID,
		Delta:     delta,
		Stock:     stock,
	}
}
