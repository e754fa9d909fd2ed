package middleware_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/vaccination-registry/internal/transport/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const specPath = "../../../api/openapi.yml"

var _ = Describe("OpenAPIValidator", func() {
	var (
		handler http.Handler
		reached bool
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		validator, err := middleware.NewOpenAPIValidator(context.Background(), specPath, logger)
		Expect(err).NotTo(HaveOccurred())

		reached = false
		handler = validator.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			w.WriteHeader(http.StatusNoContent)
		}))
	})

	serve := func(method, target, body string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, target, reader)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	errorCode := func(rec *httptest.ResponseRecorder) string {
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		return body.Error.Code
	}

	It("passes requests that match the contract", func() {
		rec := serve(http.MethodGet, "/api/v1/pacientes/12", "")
		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(reached).To(BeTrue())
	})

	It("prefers literal segments over path parameters", func() {
		Expect(serve(http.MethodGet, "/api/v1/users/me", "").Code).To(Equal(http.StatusNoContent))
		Expect(serve(http.MethodGet, "/api/v1/pacientes/export", "").Code).To(Equal(http.StatusNoContent))
	})

	It("rejects a non numeric id", func() {
		rec := serve(http.MethodGet, "/api/v1/pacientes/abc", "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(reached).To(BeFalse())
		Expect(errorCode(rec)).To(Equal("VALIDATION_FAILED"))
	})

	It("rejects an unknown catalog kind", func() {
		rec := serve(http.MethodGet, "/api/v1/catalogos/vacunas", "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects a body with the wrong types", func() {
		rec := serve(http.MethodPost, "/api/v1/insumos/4/entradas", `{"lote":"L1","cantidad":"diez"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(reached).To(BeFalse())
	})

	It("requires the report range", func() {
		rec := serve(http.MethodGet, "/api/v1/reportes/vacunacion?desde=2026-01-01", "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("lets undocumented routes through", func() {
		rec := serve(http.MethodGet, "/api/v1/unknown", "")
		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(reached).To(BeTrue())
	})
})
