package insumo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/vaccination-registry/internal/core/events"
	"github.com/frahmantamala/vaccination-registry/internal/core/metrics"
)

// DefaultLowStockThreshold is used when the handler is built with a
// non-positive threshold.
const DefaultLowStockThreshold = 10

// StockEventHandler tracks stock movements published by the insumo and
// vacunacion services and warns when an insumo runs low.
type StockEventHandler struct {
	threshold int64
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewStockEventHandler(threshold int64, m *metrics.Metrics, logger *slog.Logger) *StockEventHandler {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return &StockEventHandler{
		threshold: threshold,
		metrics:   m,
		logger:    logger,
	}
}

func (h *StockEventHandler) HandleStockChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.StockChangedEvent)
	if !ok {
		h.logger.Error("invalid event type for stock handler", "event_type", event.EventType())
		return fmt.Errorf("expected StockChangedEvent, got %T", event)
	}

	h.metrics.SetStock(e.EmpresaID, e.InsumoID, e.Stock)
	h.logger.Info("insumo stock changed",
		"empresa_id", e.EmpresaID,
		"insumo_id", e.InsumoID,
		"delta", e.Delta,
		"stock", e.Stock,
		"event_id", e.EventID())

	if e.Delta < 0 && e.Stock < h.threshold {
		h.logger.Warn("insumo stock below threshold",
			"empresa_id", e.EmpresaID,
			"insumo_id", e.InsumoID,
			"stock", e.Stock,
			"threshold", h.threshold)
	}
	return nil
}

func (h *StockEventHandler) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeStockChanged, h.HandleStockChanged)

	h.logger.Info("insumo event handlers registered",
		"handlers", []string{events.EventTypeStockChanged})
}
