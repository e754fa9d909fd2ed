package internal_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/frahmantamala/vaccination-registry/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	Describe("Public", func() {
		It("hides a tenant mismatch behind a generic not found", func() {
			mismatch := internal.NewTenantMismatchError("paciente 9 belongs to empresa 2").
				WithDetails(map[string]int64{"empresa_id": 2})

			public := internal.Public(fmt.Errorf("load paciente: %w", mismatch))

			Expect(public.StatusCode).To(Equal(http.StatusNotFound))
			Expect(public.Type).To(Equal(internal.ErrorTypeNotFound))
			Expect(public.Code).To(Equal(internal.ErrCodeNotFound))
			Expect(public.Message).NotTo(ContainSubstring("empresa"))
			Expect(public.Details).To(BeNil())
		})

		It("wraps unknown errors as internal errors", func() {
			public := internal.Public(errors.New("pq: connection refused"))
			Expect(public.StatusCode).To(Equal(http.StatusInternalServerError))

			raw, err := json.Marshal(public)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).NotTo(ContainSubstring("connection refused"))
		})

		It("keeps the other app errors as they are", func() {
			conflict := internal.NewConflictError("Role already exists", internal.ErrCodeDuplicate)
			Expect(internal.Public(conflict)).To(BeIdenticalTo(conflict))
		})
	})

	It("matches sentinels with errors.Is after WithCause", func() {
		err := internal.ErrAccessDenied.WithCause(errors.New("missing can_delete"))
		Expect(errors.Is(err, internal.ErrAccessDenied)).To(BeTrue())
		Expect(errors.Is(err, internal.ErrInvalidToken)).To(BeFalse())
	})

	It("renders the error envelope", func() {
		status, body := internal.NewValidationFieldError("nombre", "nombre is required", internal.ErrCodeValidationFailed).ToHTTPResponse()
		Expect(status).To(Equal(http.StatusBadRequest))

		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		Expect(raw).To(MatchJSON(`{
			"error": {
				"type": "VALIDATION_ERROR",
				"code": "VALIDATION_FAILED",
				"message": "Validation failed",
				"details": {"errors": [{"field": "nombre", "message": "nombre is required", "code": "VALIDATION_FAILED"}]}
			}
		}`))
	})

	It("joins field messages in Error", func() {
		err := &internal.AppError{
			Message: "Validation failed",
			Details: internal.ValidationErrors{Errors: []internal.ValidationError{
				{Field: "codigo", Message: "codigo is required"},
				{Field: "nombre", Message: "nombre is required"},
			}},
		}
		Expect(err.Error()).To(Equal("codigo is required; nombre is required"))
	})
})
