package cmd

import (
	"log/slog"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/core/events"
	"github.com/frahmantamala/vaccination-registry/internal/core/metrics"
	"github.com/frahmantamala/vaccination-registry/internal/insumo"
)

// newEventBus builds the in-process bus and subscribes the handlers that do
// not belong to a single service. The menu cache subscribes itself.
func newEventBus(cfg *internal.Config, m *metrics.Metrics, logger *slog.Logger) *events.EventBus {
	bus := events.NewEventBus(logger)

	insumo.NewStockEventHandler(cfg.Inventory.LowStockThreshold, m, logger).RegisterEventHandlers(bus)

	return bus
}
