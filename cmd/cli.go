package cmd

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/core/events"
	"github.com/frahmantamala/vaccination-registry/internal/core/metrics"
	"github.com/frahmantamala/vaccination-registry/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// cliRuntime is the service graph for one-shot administrative commands.
// Metrics go to a private registry that is never scraped.
type cliRuntime struct {
	ctx      context.Context
	cfg      *internal.Config
	stores   *Stores
	bus      *events.EventBus
	services *Services
	logger   *slog.Logger
}

func newCLIRuntime(cmd *cobra.Command) (*cliRuntime, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	stores, err := initDB(cfg.Database)
	if err != nil {
		return nil, err
	}

	log := logger.LoggerWrapper()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	bus := newEventBus(cfg, m, log)

	return &cliRuntime{
		ctx:      ctx,
		cfg:      cfg,
		stores:   stores,
		bus:      bus,
		services: newServices(cfg, stores, bus, m, log),
		logger:   log,
	}, nil
}

func (r *cliRuntime) Close() {
	r.bus.Wait()
	_ = r.stores.Close()
}
