package cmd

import (
	"fmt"
	"log/slog"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/auth"
	authPostgres "github.com/frahmantamala/vaccination-registry/internal/auth/postgres"
	"github.com/frahmantamala/vaccination-registry/internal/catalog"
	catalogPostgres "github.com/frahmantamala/vaccination-registry/internal/catalog/postgres"
	"github.com/frahmantamala/vaccination-registry/internal/core/events"
	"github.com/frahmantamala/vaccination-registry/internal/core/metrics"
	"github.com/frahmantamala/vaccination-registry/internal/empresa"
	empresaPostgres "github.com/frahmantamala/vaccination-registry/internal/empresa/postgres"
	"github.com/frahmantamala/vaccination-registry/internal/export"
	"github.com/frahmantamala/vaccination-registry/internal/insumo"
	insumoPostgres "github.com/frahmantamala/vaccination-registry/internal/insumo/postgres"
	"github.com/frahmantamala/vaccination-registry/internal/menu"
	menuPostgres "github.com/frahmantamala/vaccination-registry/internal/menu/postgres"
	"github.com/frahmantamala/vaccination-registry/internal/paciente"
	pacientePostgres "github.com/frahmantamala/vaccination-registry/internal/paciente/postgres"
	"github.com/frahmantamala/vaccination-registry/internal/rbac"
	rbacPostgres "github.com/frahmantamala/vaccination-registry/internal/rbac/postgres"
	"github.com/frahmantamala/vaccination-registry/internal/reporte"
	reportePostgres "github.com/frahmantamala/vaccination-registry/internal/reporte/postgres"
	"github.com/frahmantamala/vaccination-registry/internal/user"
	userPostgres "github.com/frahmantamala/vaccination-registry/internal/user/postgres"
	"github.com/frahmantamala/vaccination-registry/internal/vacunacion"
	vacunacionPostgres "github.com/frahmantamala/vaccination-registry/internal/vacunacion/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Stores holds one connection pool shared by gorm repositories and the
// sqlx read models.
type Stores struct {
	SQL  *sqlx.DB
	Gorm *gorm.DB
}

func (s *Stores) Close() error {
	return s.SQL.Close()
}

// initDB opens the pgx pool through sqlx and layers gorm over the same
// *sql.DB.
func initDB(cfg internal.DatabaseConfig) (*Stores, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: dbConn.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to open gorm over pool: %w", err)
	}

	return &Stores{SQL: dbConn, Gorm: gormDB}, nil
}

// Services is every domain service built over the stores.
type Services struct {
	Auth       *auth.Service
	Menu       *menu.Service
	MenuCache  *menu.Cache
	RBAC       *rbac.Service
	Empresa    *empresa.Service
	User       *user.Service
	Catalog    *catalog.Service
	Paciente   *paciente.Service
	Insumo     *insumo.Service
	Vacunacion *vacunacion.Service
	Reporte    *reporte.Service
	Export     *export.Service
}

func newServices(cfg *internal.Config, stores *Stores, bus *events.EventBus, m *metrics.Metrics, logger *slog.Logger) *Services {
	db := stores.Gorm

	var cache *menu.Cache
	if cfg.MenuCache.Enabled {
		cache = menu.NewCache(cfg.MenuCache.Size, cfg.MenuCache.TTL, m)
		cache.Subscribe(bus)
	}

	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.JWTSecret,
		cfg.Security.JWTIssuer,
		cfg.Security.AccessTokenDuration,
		0,
	)

	catalogService := catalog.NewService(catalogPostgres.NewCatalogRepository(db), logger)
	pacienteService := paciente.NewService(pacientePostgres.NewPacienteRepository(db), catalogService, logger)
	insumoService := insumo.NewService(insumoPostgres.NewInsumoRepository(db), bus, logger)

	return &Services{
		Auth:      auth.NewService(authPostgres.NewRepository(db), tokenGen, cfg.Security.BCryptCost, logger),
		Menu:      menu.NewService(menuPostgres.NewMenuRepository(db), cache, m, logger),
		MenuCache: cache,
		RBAC:      rbac.NewService(rbacPostgres.NewRBACRepository(db), bus, logger),
		Empresa:   empresa.NewService(empresaPostgres.NewEmpresaRepository(db), bus, logger),
		User:      user.NewService(userPostgres.NewUserRepository(db), bus, cfg.Security.BCryptCost, logger),
		Catalog:   catalogService,
		Paciente:  pacienteService,
		Insumo:    insumoService,
		Vacunacion: vacunacion.NewService(
			vacunacionPostgres.NewVacunacionRepository(db),
			pacienteService,
			insumoService,
			catalogService,
			bus,
			logger,
		),
		Reporte: reporte.NewService(reportePostgres.NewReporteRepository(stores.SQL), logger),
		Export:  export.NewService(pacienteService, logger),
	}
}
