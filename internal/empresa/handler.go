package empresa

import (
	"context"
	"net/http"

	"github.com/frahmantamala/vaccination-registry/internal/transport"
)

type ServiceAPI interface {
	GetCurrent(ctx context.Context, empresaID int64) (*Empresa, error)
	UpdateCurrent(ctx context.Context, empresaID int64, dto UpdateEmpresaDTO) (*Empresa, error)
	SetEstado(ctx context.Context, callerEmpresaID, empresaID int64, estado bool) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	e, err := h.Service.GetCurrent(r.Context(), p.EmpresaID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) UpdateCurrent(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto UpdateEmpresaDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	e, err := h.Service.UpdateCurrent(r.Context(), p.EmpresaID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) SetEstado(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto SetEstadoDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	if err := h.Service.SetEstado(r.Context(), p.EmpresaID, id, dto.Estado); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
