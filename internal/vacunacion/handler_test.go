package vacunacion_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	"github.com/frahmantamala/vaccination-registry/internal/transport"
	"github.com/frahmantamala/vaccination-registry/internal/vacunacion"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Vacunacion Handler", func() {
	var (
		f       *fixture
		handler *vacunacion.Handler
	)

	BeforeEach(func() {
		f = newFixture()
		handler = vacunacion.NewHandler(transport.NewBaseHandler(nil), f.service)
	})

	get := func(p *access.Principal, path string) *httptest.ResponseRecorder {
		router := chi.NewRouter()
		router.Get("/registros/{id}", handler.Get)
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req = req.WithContext(access.ContextWithPrincipal(context.Background(), p))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("serves a registro to its own tenant", func() {
		owner := &access.Principal{UserID: 1, EmpresaID: 1}
		pac := f.paciente(owner, "1")
		reg := f.registro(owner, pac.ID)

		w := get(owner, "/registros/"+itoa(reg.ID))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"paciente_id"`))
	})

	It("answers a cross-tenant read with a bare 404", func() {
		owner := &access.Principal{UserID: 1, EmpresaID: 1}
		intruder := &access.Principal{UserID: 2, EmpresaID: 2}
		pac := f.paciente(owner, "1")
		reg := f.registro(owner, pac.ID)

		w := get(intruder, "/registros/"+itoa(reg.ID))
		Expect(w.Code).To(Equal(http.StatusNotFound))
		body := w.Body.String()
		Expect(body).To(ContainSubstring("Resource not found"))
		Expect(body).NotTo(ContainSubstring("paciente"))
		Expect(body).NotTo(ContainSubstring("tenant"))
	})

	It("answers an unknown id with the same status", func() {
		w := get(&access.Principal{UserID: 2, EmpresaID: 2}, "/registros/999")
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})
