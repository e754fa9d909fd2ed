package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/auth"
	"github.com/frahmantamala/vaccination-registry/internal/catalog"
	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	"github.com/frahmantamala/vaccination-registry/internal/core/metrics"
	"github.com/frahmantamala/vaccination-registry/internal/empresa"
	"github.com/frahmantamala/vaccination-registry/internal/export"
	"github.com/frahmantamala/vaccination-registry/internal/insumo"
	"github.com/frahmantamala/vaccination-registry/internal/menu"
	"github.com/frahmantamala/vaccination-registry/internal/paciente"
	"github.com/frahmantamala/vaccination-registry/internal/rbac"
	"github.com/frahmantamala/vaccination-registry/internal/reporte"
	"github.com/frahmantamala/vaccination-registry/internal/transport/middleware"
	"github.com/frahmantamala/vaccination-registry/internal/transport/swagger"
	"github.com/frahmantamala/vaccination-registry/internal/user"
	"github.com/frahmantamala/vaccination-registry/internal/vacunacion"
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
)

// Handlers groups everything the router mounts. Nil domain handlers are
// skipped so tests can mount a subset.
type Handlers struct {
	Health     *HealthHandler
	Auth       *auth.Handler
	RBACAuth   *auth.RBACAuthorization
	Menu       *menu.Handler
	RBAC       *rbac.Handler
	Empresa    *empresa.Handler
	User       *user.Handler
	Catalog    *catalog.Handler
	Paciente   *paciente.Handler
	Vacunacion *vacunacion.Handler
	Insumo     *insumo.Handler
	Reporte    *reporte.Handler
	Export     *export.Handler
}

type RouterOptions struct {
	AllowedOrigins string
	SpecPath       string
	MetricsPath    string
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Validator      *middleware.OpenAPIValidator
	Logger         *slog.Logger
}

func RegisterAllRoutes(router chi.Router, h Handlers, opts RouterOptions) {
	router.Use(middleware.RequestID)
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RecoveryMiddleware(opts.Logger))
	router.Use(middleware.Metrics(opts.Metrics))
	router.NotFound(NotFound)

	if opts.SpecPath != "" {
		router.Get("/openapi.yml", swagger.Spec(opts.SpecPath))
		router.Handle("/swagger/*", swagger.Handler("/openapi.yml"))
	}
	if opts.Gatherer != nil && opts.MetricsPath != "" {
		router.Handle(opts.MetricsPath, metrics.Handler(opts.Gatherer))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.LoggingMiddleware(opts.Logger))
		if opts.Validator != nil {
			r.Use(opts.Validator.Middleware)
		}

		if h.Health != nil {
			r.Get("/health", h.Health.Check)
			r.Get("/ping", h.Health.Ping)
		}

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/auth/me", h.Auth.Me)
			if h.Menu != nil {
				pr.Get("/menu", h.Menu.GetMenu)
			}

			if h.RBACAuth == nil {
				return
			}
			guard := h.RBACAuth

			if h.Empresa != nil {
				registerEmpresaRoutes(pr, guard, h.Empresa)
			}
			if h.User != nil {
				registerUserRoutes(pr, guard, h.User, h.RBAC)
			}
			if h.RBAC != nil {
				registerRBACRoutes(pr, guard, h.RBAC)
			}
			if h.Catalog != nil {
				registerCatalogRoutes(pr, guard, h.Catalog)
			}
			if h.Paciente != nil {
				registerPacienteRoutes(pr, guard, h.Paciente, h.Vacunacion, h.Export)
			}
			if h.Vacunacion != nil {
				registerRegistroRoutes(pr, guard, h.Vacunacion)
			}
			if h.Insumo != nil {
				registerInsumoRoutes(pr, guard, h.Insumo)
			}
			if h.Reporte != nil {
				pr.With(guard.RequireRead(access.ResourceReporteVacunacion)).
					Get("/reportes/vacunacion", h.Reporte.VacunacionPorInsumo)
			}
		})
	})
}

func registerEmpresaRoutes(r chi.Router, guard *auth.RBACAuthorization, h *empresa.Handler) {
	r.With(guard.RequireRead(access.ResourceEmpresas)).Get("/empresa", h.GetCurrent)
	r.With(guard.RequireUpdate(access.ResourceEmpresas)).Put("/empresa", h.UpdateCurrent)
	r.With(guard.Require(access.ResourceEmpresas, access.ActionActivate)).
		Patch("/empresas/{id}/estado", h.SetEstado)
}

func registerUserRoutes(r chi.Router, guard *auth.RBACAuthorization, h *user.Handler, roles *rbac.Handler) {
	r.Route("/users", func(ur chi.Router) {
		ur.Get("/me", h.GetCurrentUser)
		ur.With(guard.RequireRead(access.ResourceUsuarios)).Get("/", h.List)
		ur.With(guard.RequireCreate(access.ResourceUsuarios)).Post("/", h.Create)
		ur.With(guard.RequireRead(access.ResourceUsuarios)).Get("/{id}", h.Get)
		ur.With(guard.RequireDelete(access.ResourceUsuarios)).Delete("/{id}", h.Delete)
		ur.With(guard.Require(access.ResourceUsuarios, access.ActionActivate)).
			Patch("/{id}/active", h.SetActive)
		ur.With(guard.Require(access.ResourceUsuarios, access.ActionResetPassword)).
			Post("/{id}/reset-password", h.ResetPassword)

		if roles != nil {
			ur.With(guard.RequireRead(access.ResourceUsuarios)).Get("/{id}/roles", roles.ListUserRoles)
			ur.With(guard.RequireUpdate(access.ResourceUsuarios)).Post("/{id}/roles", roles.AssignRole)
			ur.With(guard.RequireUpdate(access.ResourceUsuarios)).Delete("/{id}/roles/{roleID}", roles.UnassignRole)
		}
	})
}

func registerRBACRoutes(r chi.Router, guard *auth.RBACAuthorization, h *rbac.Handler) {
	r.Route("/roles", func(rr chi.Router) {
		rr.With(guard.RequireRead(access.ResourceRoles)).Get("/", h.ListRoles)
		rr.With(guard.RequireCreate(access.ResourceRoles)).Post("/", h.CreateRole)
		rr.With(guard.RequireDelete(access.ResourceRoles)).Delete("/{id}", h.DeleteRole)
		rr.With(guard.RequireRead(access.ResourceRoles)).Get("/{id}/grants", h.ListGrants)
		rr.With(guard.RequireUpdate(access.ResourceRoles)).Put("/{id}/grants", h.GrantPermission)
		rr.With(guard.RequireUpdate(access.ResourceRoles)).Delete("/{id}/grants/{menuItemID}", h.RevokePermission)
	})

	r.Route("/permissions", func(pr chi.Router) {
		pr.With(guard.RequireRead(access.ResourceRoles)).Get("/", h.ListPermissions)
		pr.With(guard.RequireCreate(access.ResourceRoles)).Post("/", h.CreatePermission)
		pr.With(guard.RequireDelete(access.ResourceRoles)).Delete("/{id}", h.DeletePermission)
	})

	r.Route("/menu-items", func(mr chi.Router) {
		mr.With(guard.RequireRead(access.ResourceMenu)).Get("/", h.ListMenuItems)
		mr.With(guard.RequireCreate(access.ResourceMenu)).Post("/", h.CreateMenuItem)
		mr.With(guard.RequireUpdate(access.ResourceMenu)).Patch("/{id}/parent", h.MoveMenuItem)
		mr.With(guard.RequireDelete(access.ResourceMenu)).Delete("/{id}", h.DeleteMenuItem)
	})
}

func registerCatalogRoutes(r chi.Router, guard *auth.RBACAuthorization, h *catalog.Handler) {
	r.Route("/catalogos/{kind}", func(cr chi.Router) {
		cr.With(guard.RequireRead(access.ResourceCatalogos)).Get("/", h.List)
		cr.With(guard.RequireCreate(access.ResourceCatalogos)).Post("/", h.Create)
		cr.With(guard.RequireRead(access.ResourceCatalogos)).Get("/{id}", h.Get)
		cr.With(guard.RequireUpdate(access.ResourceCatalogos)).Put("/{id}", h.Update)
		cr.With(guard.RequireDelete(access.ResourceCatalogos)).Delete("/{id}", h.Delete)
	})
}

func registerPacienteRoutes(r chi.Router, guard *auth.RBACAuthorization, h *paciente.Handler, registros *vacunacion.Handler, xlsx *export.Handler) {
	r.Route("/pacientes", func(pr chi.Router) {
		read := guard.RequireRead(access.ResourcePacientes)
		update := guard.RequireUpdate(access.ResourcePacientes)

		pr.With(read).Get("/", h.List)
		pr.With(guard.RequireCreate(access.ResourcePacientes)).Post("/", h.Create)

		if xlsx != nil {
			pr.With(read).Get("/export", xlsx.ExportPacientes)
			pr.With(read).Get("/import/template", xlsx.ImportTemplate)
			pr.With(guard.RequireCreate(access.ResourcePacientes)).Post("/import", xlsx.ImportPacientes)
		}

		pr.With(read).Get("/{id}", h.Get)
		pr.With(update).Put("/{id}", h.Update)
		pr.With(guard.RequireDelete(access.ResourcePacientes)).Delete("/{id}", h.Delete)

		pr.With(read).Get("/{id}/antecedentes", h.ListAntecedentes)
		pr.With(update).Post("/{id}/antecedentes", h.AddAntecedente)
		pr.With(update).Delete("/{id}/antecedentes/{antecedenteID}", h.DeleteAntecedente)

		if registros != nil {
			pr.With(guard.RequireRead(access.ResourceRegistroVacunacion)).
				Get("/{id}/registros", registros.ListByPaciente)
		}
	})
}

func registerRegistroRoutes(r chi.Router, guard *auth.RBACAuthorization, h *vacunacion.Handler) {
	r.Route("/registros", func(rr chi.Router) {
		rr.With(guard.RequireCreate(access.ResourceRegistroVacunacion)).Post("/", h.Create)
		rr.With(guard.RequireRead(access.ResourceRegistroVacunacion)).Get("/{id}", h.Get)
		rr.With(guard.RequireUpdate(access.ResourceRegistroVacunacion)).Put("/{id}", h.Update)
		rr.With(guard.RequireDelete(access.ResourceRegistroVacunacion)).Delete("/{id}", h.Delete)
		rr.With(guard.RequireUpdate(access.ResourceRegistroVacunacion)).Post("/{id}/vacunas", h.AddVacunaAplicada)
	})
}

func registerInsumoRoutes(r chi.Router, guard *auth.RBACAuthorization, h *insumo.Handler) {
	r.Route("/insumos", func(ir chi.Router) {
		ir.With(guard.RequireRead(access.ResourceInsumos)).Get("/", h.List)
		ir.With(guard.RequireCreate(access.ResourceInsumos)).Post("/", h.Create)
		ir.With(guard.RequireRead(access.ResourceInsumos)).Get("/{id}", h.Get)
		ir.With(guard.Require(access.ResourceInsumos, access.ActionActivate)).Patch("/{id}/deactivate", h.Deactivate)
		ir.With(guard.RequireRead(access.ResourceInsumos)).Get("/{id}/entradas", h.ListEntradas)
		ir.With(guard.RequireCreate(access.ResourceInsumos)).Post("/{id}/entradas", h.RegisterEntrada)
	})
}

var errRouteNotFound = internal.NewNotFoundError("Resource not found", internal.ErrCodeNotFound)

// NotFound keeps unknown routes in the API error shape.
func NotFound(w http.ResponseWriter, r *http.Request) {
	status, body := errRouteNotFound.ToHTTPResponse()
	writeHealthJSON(w, status, body)
}
