package export

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	"github.com/frahmantamala/vaccination-registry/internal/transport"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxUploadBytes  = 10 << 20
)

type ServiceAPI interface {
	ExportPacientes(ctx context.Context, p *access.Principal, w io.Writer) (int, error)
	ImportTemplate(w io.Writer) error
	ImportPacientes(ctx context.Context, p *access.Principal, r io.Reader) (*ImportResult, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

func (h *Handler) writeXLSX(w http.ResponseWriter, filename string, body *bytes.Buffer) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := body.WriteTo(w); err != nil {
		h.Logger.Error("failed to write xlsx response", "error", err)
	}
}

func (h *Handler) ExportPacientes(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if _, err := h.Service.ExportPacientes(r.Context(), p, &buf); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.writeXLSX(w, Filename(p.EmpresaID), &buf)
}

func (h *Handler) ImportTemplate(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.Service.ImportTemplate(&buf); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.writeXLSX(w, "pacientes_template.xlsx", &buf)
}

// ImportPacientes accepts a multipart upload with the workbook in "file".
func (h *Handler) ImportPacientes(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.WriteAppError(w, internal.NewValidationFieldError("file", "invalid multipart upload", internal.ErrCodeValidationFailed))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		h.WriteAppError(w, internal.NewValidationFieldError("file", "file is required", internal.ErrCodeValidationFailed))
		return
	}
	defer file.Close()

	result, err := h.Service.ImportPacientes(r.Context(), p, file)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}
