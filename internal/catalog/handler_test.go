package catalog_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/vaccination-registry/internal/catalog"
	catalogPostgres "github.com/frahmantamala/vaccination-registry/internal/catalog/postgres"
	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	"github.com/frahmantamala/vaccination-registry/internal/core/storetest"
	"github.com/frahmantamala/vaccination-registry/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Catalog Handler", func() {
	var router chi.Router

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := catalog.NewService(catalogPostgres.NewCatalogRepository(storetest.MustOpen()), slogger)
		handler := catalog.NewHandler(transport.NewBaseHandler(slogger), service)

		principal := &access.Principal{UserID: 1, EmpresaID: 1, Username: "admin"}
		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(access.ContextWithPrincipal(r.Context(), principal)))
			})
		})
		router.Get("/catalogos/{kind}", handler.List)
		router.Post("/catalogos/{kind}", handler.Create)
		router.Get("/catalogos/{kind}/{id}", handler.Get)
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

	It("creates and lists entries of a kind", func() {
		w := do(http.MethodPost, "/catalogos/hospitales", catalog.CreateEntryDTO{Codigo: "H1", Nombre: "Hospital Central"})
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = do(http.MethodGet, "/catalogos/hospitales", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp catalog.EntriesResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Kind).To(Equal(catalog.KindHospital))
		Expect(resp.Entries).To(HaveLen(1))
		Expect(resp.Entries[0].Nombre).To(Equal("Hospital Central"))
	})

	It("returns 404 for an unknown kind", func() {
		w := do(http.MethodGet, "/catalogos/monedas", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("returns 400 for a non numeric id", func() {
		w := do(http.MethodGet, "/catalogos/hospitales/abc", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
