package rbac_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"

	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	"github.com/frahmantamala/vaccination-registry/internal/core/storetest"
	"github.com/frahmantamala/vaccination-registry/internal/rbac"
	rbacPostgres "github.com/frahmantamala/vaccination-registry/internal/rbac/postgres"
	"github.com/frahmantamala/vaccination-registry/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RBAC Handler", func() {
	var (
		ctx      context.Context
		router   chi.Router
		service  *rbac.Service
		empresaA int64
		empresaB int64
		roleA    int64
		roleB    int64
		itemA    int64
	)

	BeforeEach(func() {
		ctx = context.Background()
		db := storetest.MustOpen()
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = rbac.NewService(rbacPostgres.NewRBACRepository(db), &recordingPublisher{}, slogger)
		handler := rbac.NewHandler(transport.NewBaseHandler(slogger), service)

		empresaA = newEmpresa(db, "A")
		empresaB = newEmpresa(db, "B")

		var err error
		roleA, err = service.CreateRole(ctx, empresaA, rbac.CreateRoleDTO{Name: "Enfermera"})
		Expect(err).NotTo(HaveOccurred())
		roleB, err = service.CreateRole(ctx, empresaB, rbac.CreateRoleDTO{Name: "Enfermera"})
		Expect(err).NotTo(HaveOccurred())
		itemA, err = service.CreateMenuItem(ctx, empresaA, rbac.CreateMenuItemDTO{Name: "Pacientes", ResourceKey: access.ResourcePacientes})
		Expect(err).NotTo(HaveOccurred())

		principal := &access.Principal{UserID: 1, EmpresaID: empresaA, Username: "admin"}
		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(access.ContextWithPrincipal(r.Context(), principal)))
			})
		})
		router.Get("/roles/{id}/grants", handler.ListGrants)
		router.Put("/roles/{id}/grants", handler.GrantPermission)
	})

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	grantsPath := func(roleID int64) string {
		return "/roles/" + strconv.FormatInt(roleID, 10) + "/grants"
	}

	It("upserts a grant on repeated PUTs", func() {
		w := do(http.MethodPut, grantsPath(roleA), rbac.GrantDTO{
			MenuItemID:   itemA,
			Capabilities: access.Capabilities{CanRead: true},
		})
		Expect(w.Code).To(Equal(http.StatusNoContent))

		w = do(http.MethodPut, grantsPath(roleA), rbac.GrantDTO{
			MenuItemID:   itemA,
			Capabilities: access.Capabilities{CanRead: true, CanUpdate: true},
		})
		Expect(w.Code).To(Equal(http.StatusNoContent))

		w = do(http.MethodGet, grantsPath(roleA), nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp rbac.GrantsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Grants).To(HaveLen(1))
		Expect(resp.Grants[0].MenuItemID).To(Equal(itemA))
		Expect(resp.Grants[0].Capabilities).To(Equal(access.Capabilities{CanRead: true, CanUpdate: true}))
	})

	It("rejects a grant without a menu item", func() {
		w := do(http.MethodPut, grantsPath(roleA), rbac.GrantDTO{Capabilities: access.Capabilities{CanRead: true}})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	Context("when the role belongs to another tenant", func() {
		It("answers 404 when listing its grants", func() {
			w := do(http.MethodGet, grantsPath(roleB), nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(w.Body.String()).To(ContainSubstring("Resource not found"))
		})

		It("answers 404 on PUT and leaves the role untouched", func() {
			w := do(http.MethodPut, grantsPath(roleB), rbac.GrantDTO{
				MenuItemID:   itemA,
				Capabilities: access.Capabilities{CanRead: true},
			})
			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(w.Body.String()).NotTo(ContainSubstring("tenant"))

			grants, err := service.ListGrants(ctx, empresaB, roleB)
			Expect(err).NotTo(HaveOccurred())
			Expect(grants).To(BeEmpty())
		})

		It("answers the same 404 as an unknown role", func() {
			w := do(http.MethodGet, grantsPath(roleB+1000), nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	It("returns 400 for a non numeric role id", func() {
		w := do(http.MethodGet, "/roles/abc/grants", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
