package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/auth"
	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	"github.com/frahmantamala/vaccination-registry/internal/core/metrics"
	"github.com/frahmantamala/vaccination-registry/internal/insumo"
	"github.com/frahmantamala/vaccination-registry/internal/menu"
	"github.com/frahmantamala/vaccination-registry/internal/transport"
	"github.com/frahmantamala/vaccination-registry/internal/transport/middleware"
	"github.com/frahmantamala/vaccination-registry/internal/transport/rest"
	"github.com/go-chi/chi"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
)

const goodToken = "good-token"

type fakeTokens struct{}

func (fakeTokens) Authenticate(context.Context, auth.LoginDTO) (auth.AuthTokens, error) {
	return auth.AuthTokens{}, internal.ErrInvalidCredentials
}

func (fakeTokens) RefreshTokens(context.Context, string) (auth.AuthTokens, error) {
	return auth.AuthTokens{}, internal.ErrInvalidToken
}

func (fakeTokens) ValidateAccessToken(token string) (*auth.Claims, error) {
	if token != goodToken {
		return nil, internal.ErrInvalidToken
	}
	return &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "enfermera"}}, nil
}

type fixedAuthorizer struct {
	auth *menu.Authorization
}

func (f fixedAuthorizer) Resolve(context.Context, string) (*menu.Authorization, error) {
	return f.auth, nil
}

type stubInsumos struct {
	insumo.ServiceAPI
	created bool
}

func (s *stubInsumos) List(context.Context, *access.Principal, bool) ([]*insumo.Insumo, error) {
	return []*insumo.Insumo{{ID: 1, Codigo: "VAC-BCG", Nombre: "BCG", Tipo: insumo.TipoVacuna}}, nil
}

func (s *stubInsumos) Create(context.Context, *access.Principal, insumo.CreateInsumoDTO) (*insumo.Insumo, error) {
	s.created = true
	return &insumo.Insumo{ID: 2}, nil
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

var _ = Describe("Router", func() {
	var (
		router   *chi.Mux
		registry *prometheus.Registry
		insumos  *stubInsumos
		dbErr    error
	)

	BeforeEach(func() {
		dbErr = nil
	})

	JustBeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		base := transport.NewBaseHandler(lg)
		registry = prometheus.NewRegistry()
		m := metrics.NewMetrics(registry)
		insumos = &stubInsumos{}

		authorization := &menu.Authorization{
			UserID:    7,
			EmpresaID: 1,
			Username:  "enfermera",
			Permissions: map[string]access.Capabilities{
				access.ResourceInsumos: {CanRead: true},
			},
		}

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{
			Health:   rest.NewHealthHandler(map[string]rest.Pinger{"postgres": pinger{err: dbErr}}),
			Auth:     auth.NewHandler(base, fakeTokens{}, fixedAuthorizer{auth: authorization}),
			RBACAuth: auth.NewRBACAuthorization(lg, m),
			Insumo:   insumo.NewHandler(base, insumos),
		}, rest.RouterOptions{
			AllowedOrigins: "http://localhost:3000",
			MetricsPath:    "/metrics",
			Metrics:        m,
			Gatherer:       registry,
			Logger:         lg,
		})
	})

	do := func(method, path, token string, body io.Reader) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, body)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("answers ping and tags the response with a trace id", func() {
		rec := do(http.MethodGet, "/api/v1/ping", "", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get(middleware.TraceHeader)).ToNot(BeEmpty())
	})

	It("echoes a caller supplied trace id", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		req.Header.Set(middleware.TraceHeader, "trace-123")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Header().Get(middleware.TraceHeader)).To(Equal("trace-123"))
	})

	Context("when the database is down", func() {
		BeforeEach(func() {
			dbErr = errors.New("connection refused")
		})

		It("reports unhealthy without leaking the cause", func() {
			rec := do(http.MethodGet, "/api/v1/health", "", nil)
			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))

			var resp rest.HealthResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Status).To(Equal(rest.HealthUnhealthy))
			Expect(resp.Components["postgres"].Message).ToNot(ContainSubstring("refused"))
		})
	})

	It("returns the API error shape for unknown routes", func() {
		rec := do(http.MethodGet, "/nowhere", "", nil)
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Body.String()).To(ContainSubstring("RESOURCE_NOT_FOUND"))
	})

	It("rejects anonymous calls to protected routes", func() {
		rec := do(http.MethodGet, "/api/v1/insumos", "", nil)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("lets a read capability list insumos", func() {
		rec := do(http.MethodGet, "/api/v1/insumos", goodToken, nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("VAC-BCG"))
	})

	It("denies create without the create capability", func() {
		rec := do(http.MethodPost, "/api/v1/insumos", goodToken,
			strings.NewReader(`{"codigo":"VAC-X","nombre":"X","tipo":"vacuna"}`))
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(insumos.created).To(BeFalse())
	})

	It("returns the resolved principal from /auth/me", func() {
		rec := do(http.MethodGet, "/api/v1/auth/me", goodToken, nil)
		Expect(rec.Code).To(Equal(http.StatusOK))

		var p access.Principal
		Expect(json.Unmarshal(rec.Body.Bytes(), &p)).To(Succeed())
		Expect(p.Can(access.ResourcePacientes, access.ActionRead)).To(BeFalse())
	})

	It("answers CORS preflight for allowed origins only", func() {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/insumos", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:3000"))

		req = httptest.NewRequest(http.MethodOptions, "/api/v1/insumos", nil)
		req.Header.Set("Origin", "http://evil.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})

	It("records request metrics by route pattern and exposes them", func() {
		do(http.MethodGet, "/api/v1/insumos", goodToken, nil)

		families, err := registry.Gather()
		Expect(err).ToNot(HaveOccurred())

		var routes []string
		for _, f := range families {
			if f.GetName() != "registry_http_requests_total" {
				continue
			}
			for _, metric := range f.GetMetric() {
				for _, l := range metric.GetLabel() {
					if l.GetName() == "route" {
						routes = append(routes, l.GetValue())
					}
				}
			}
		}
		Expect(routes).To(ContainElement(HavePrefix("/api/v1/insumos")))

		rec := do(http.MethodGet, "/metrics", "", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("registry_authorization_decisions_total"))
	})
})
