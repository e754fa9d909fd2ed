package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	"github.com/frahmantamala/vaccination-registry/internal/menu"
	"github.com/frahmantamala/vaccination-registry/internal/transport"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

type stubAuthorizer struct {
	auth *menu.Authorization
	err  error
	seen []string
}

func (s *stubAuthorizer) Resolve(_ context.Context, identity string) (*menu.Authorization, error) {
	s.seen = append(s.seen, identity)
	if s.err != nil {
		return nil, s.err
	}
	if s.auth == nil {
		return menu.Empty(), nil
	}
	return s.auth, nil
}

var _ = ginkgo.Describe("Auth Handler", func() {
	var (
		handler    *Handler
		authorizer *stubAuthorizer
		rbacAuth   *RBACAuthorization
		token      string
		reached    bool
		next       http.Handler
	)

	ginkgo.BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		tokenGen := NewJWTTokenGenerator(testSecret, "vaccination-registry", time.Hour, time.Hour)
		service := NewService(newMockUserRepository(), tokenGen, bcrypt.MinCost, lg)
		authorizer = &stubAuthorizer{}
		handler = NewHandler(transport.NewBaseHandler(lg), service, authorizer)
		rbacAuth = NewRBACAuthorization(lg, nil)

		var err error
		token, _, err = tokenGen.GenerateAccessToken("enfermera")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		reached = false
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			w.WriteHeader(http.StatusOK)
		})
	})

	serve := func(h http.Handler, bearer string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/pacientes", nil)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	ginkgo.Describe("Login", func() {
		ginkgo.It("should return tokens for valid credentials", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
				strings.NewReader(`{"username":"enfermera","password":"correct_password"}`))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("access_token"))
		})

		ginkgo.It("should answer 401 for a wrong password", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
				strings.NewReader(`{"username":"enfermera","password":"bad"}`))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("should answer 400 for a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{`))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("AuthMiddleware", func() {
		ginkgo.It("should reject requests without a token", func() {
			rec := serve(handler.AuthMiddleware(next), "")

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(reached).To(gomega.BeFalse())
			gomega.Expect(authorizer.seen).To(gomega.BeEmpty())
		})

		ginkgo.It("should reject a garbage token", func() {
			rec := serve(handler.AuthMiddleware(next), "not-a-jwt")

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(reached).To(gomega.BeFalse())
		})

		ginkgo.It("should reject identities that resolve to no access", func() {
			rec := serve(handler.AuthMiddleware(next), token)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(authorizer.seen).To(gomega.Equal([]string{"enfermera"}))
			gomega.Expect(reached).To(gomega.BeFalse())
		})

		ginkgo.It("should fail closed when the authorization store is down", func() {
			authorizer.err = internal.NewDependencyError("authorization store unavailable", errors.New("timeout"))

			rec := serve(handler.AuthMiddleware(next), token)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusServiceUnavailable))
			gomega.Expect(reached).To(gomega.BeFalse())
		})

		ginkgo.It("should place the principal in the context", func() {
			authorizer.auth = &menu.Authorization{
				UserID:      1,
				EmpresaID:   1,
				Username:    "enfermera",
				Permissions: map[string]access.Capabilities{access.ResourcePacientes: {CanRead: true}},
			}
			var got *access.Principal
			capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = access.PrincipalFromContext(r.Context())
				gomega.Expect(internal.IdentityFromContext(r.Context())).To(gomega.Equal("enfermera"))
				w.WriteHeader(http.StatusOK)
			})

			rec := serve(handler.AuthMiddleware(capture), token)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(got).ToNot(gomega.BeNil())
			gomega.Expect(got.EmpresaID).To(gomega.Equal(int64(1)))
		})
	})

	ginkgo.Describe("RBACAuthorization", func() {
		ginkgo.BeforeEach(func() {
			authorizer.auth = &menu.Authorization{
				UserID:    1,
				EmpresaID: 1,
				Username:  "enfermera",
				Permissions: map[string]access.Capabilities{
					access.ResourceRegistroVacunacion: {CanRead: true, CanCreate: true},
				},
			}
		})

		ginkgo.It("should let a granted capability through", func() {
			h := handler.AuthMiddleware(rbacAuth.RequireCreate(access.ResourceRegistroVacunacion)(next))

			rec := serve(h, token)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(reached).To(gomega.BeTrue())
		})

		ginkgo.It("should forbid a missing capability", func() {
			h := handler.AuthMiddleware(rbacAuth.RequireDelete(access.ResourceRegistroVacunacion)(next))

			rec := serve(h, token)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(reached).To(gomega.BeFalse())
		})

		ginkgo.It("should forbid resources without any grant", func() {
			h := handler.AuthMiddleware(rbacAuth.RequireRead(access.ResourceInsumos)(next))

			rec := serve(h, token)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should answer 401 when no principal was resolved", func() {
			rec := serve(rbacAuth.RequireRead(access.ResourceInsumos)(next), "")

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})
})
