package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/auth"
	"github.com/frahmantamala/vaccination-registry/internal/catalog"
	"github.com/frahmantamala/vaccination-registry/internal/core/events"
	"github.com/frahmantamala/vaccination-registry/internal/core/metrics"
	"github.com/frahmantamala/vaccination-registry/internal/empresa"
	"github.com/frahmantamala/vaccination-registry/internal/export"
	"github.com/frahmantamala/vaccination-registry/internal/insumo"
	"github.com/frahmantamala/vaccination-registry/internal/menu"
	"github.com/frahmantamala/vaccination-registry/internal/paciente"
	"github.com/frahmantamala/vaccination-registry/internal/rbac"
	"github.com/frahmantamala/vaccination-registry/internal/reporte"
	"github.com/frahmantamala/vaccination-registry/internal/transport"
	"github.com/frahmantamala/vaccination-registry/internal/transport/middleware"
	"github.com/frahmantamala/vaccination-registry/internal/transport/rest"
	"github.com/frahmantamala/vaccination-registry/internal/user"
	"github.com/frahmantamala/vaccination-registry/internal/vacunacion"
	"github.com/frahmantamala/vaccination-registry/pkg/logger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	Stores   *Stores
	Bus      *events.EventBus
	Router   *chi.Mux
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Services *Services
	Logger   *slog.Logger
}

func startHTTPServer() error {
	deps, err := initializeDependencies()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Stores.Close()

	if err := setupRoutes(deps); err != nil {
		return err
	}

	cfg := deps.Config.Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		// let in-flight stock and cache handlers finish
		deps.Bus.Wait()
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	deps.Logger.Info("server stopped")
	return nil
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	svc := deps.Services
	base := transport.NewBaseHandler(deps.Logger)

	var validator *middleware.OpenAPIValidator
	if cfg.Observability.OpenAPI.ValidateRequests {
		v, err := middleware.NewOpenAPIValidator(context.Background(), cfg.Observability.OpenAPI.SpecPath, deps.Logger)
		if err != nil {
			return fmt.Errorf("failed to load openapi validator: %w", err)
		}
		validator = v
	}

	if cfg.Server.RequestTimeout > 0 {
		deps.Router.Use(chiMiddleware.Timeout(cfg.Server.RequestTimeout))
	}

	handlers := rest.Handlers{
		Health:     rest.NewHealthHandler(map[string]rest.Pinger{"postgres": deps.Stores.SQL}),
		Auth:       auth.NewHandler(base, svc.Auth, svc.Menu),
		RBACAuth:   auth.NewRBACAuthorization(deps.Logger, deps.Metrics),
		Menu:       menu.NewHandler(base, svc.Menu),
		RBAC:       rbac.NewHandler(base, svc.RBAC),
		Empresa:    empresa.NewHandler(base, svc.Empresa),
		User:       user.NewHandler(base, svc.User),
		Catalog:    catalog.NewHandler(base, svc.Catalog),
		Paciente:   paciente.NewHandler(base, svc.Paciente),
		Vacunacion: vacunacion.NewHandler(base, svc.Vacunacion),
		Insumo:     insumo.NewHandler(base, svc.Insumo),
		Reporte:    reporte.NewHandler(base, svc.Reporte),
		Export:     export.NewHandler(base, svc.Export),
	}

	opts := rest.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SpecPath:       cfg.Observability.OpenAPI.SpecPath,
		Metrics:        deps.Metrics,
		Validator:      validator,
		Logger:         deps.Logger,
	}
	if cfg.Observability.Metrics.Enabled {
		opts.MetricsPath = cfg.Observability.Metrics.Path
		opts.Gatherer = deps.Registry
	}

	rest.RegisterAllRoutes(deps.Router, handlers, opts)
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	stores, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(stores.SQL.DB, "registry"),
	)
	m := metrics.NewMetrics(registry)

	bus := newEventBus(config, m, lg)

	return &Dependencies{
		Config:   config,
		Stores:   stores,
		Bus:      bus,
		Router:   chi.NewRouter(),
		Registry: registry,
		Metrics:  m,
		Services: newServices(config, stores, bus, m, lg),
		Logger:   lg,
	}, nil
}
