package middleware_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/vaccination-registry/internal/transport/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LoggingMiddleware", func() {
	var (
		out      *bytes.Buffer
		received string
		handler  http.Handler
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		logger := slog.New(slog.NewJSONHandler(out, nil))
		handler = middleware.LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			received = string(raw)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":7,"email":"ana@example.com"}`))
		}))
	})

	It("masks credentials and patient contact data", func() {
		payload := `{"primer_nombre":"Ana","telefono":"3001234567","password":"s3cret-pass"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/pacientes", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer abc.def.ghi")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(received).To(Equal(payload))

		logged := out.String()
		Expect(logged).To(ContainSubstring("Ana"))
		Expect(logged).To(ContainSubstring("[FILTERED]"))
		Expect(logged).NotTo(ContainSubstring("3001234567"))
		Expect(logged).NotTo(ContainSubstring("s3cret-pass"))
		Expect(logged).NotTo(ContainSubstring("abc.def.ghi"))
		Expect(logged).NotTo(ContainSubstring("ana@example.com"))
	})

	It("does not read non JSON uploads", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/pacientes/import", strings.NewReader("PK-binary"))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")

		handler.ServeHTTP(httptest.NewRecorder(), req)

		Expect(received).To(Equal("PK-binary"))
		Expect(out.String()).NotTo(ContainSubstring("PK-binary"))
	})
})
