package vacunacion

import (
	"context"
	"net/http"

	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	"github.com/frahmantamala/vaccination-registry/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, p *access.Principal, dto RegistroDTO) (*Registro, error)
	Get(ctx context.Context, p *access.Principal, id int64) (*Registro, error)
	ListByPaciente(ctx context.Context, p *access.Principal, pacienteID int64) ([]*Registro, error)
	Update(ctx context.Context, p *access.Principal, id int64, dto RegistroDTO) (*Registro, error)
	Delete(ctx context.Context, p *access.Principal, id int64) error
	AddVacunaAplicada(ctx context.Context, p *access.Principal, registroID int64, dto VacunaDTO) (*VacunaAplicada, error)
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

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto RegistroDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	out, err := h.Service.Create(r.Context(), p, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	out, err := h.Service.Get(r.Context(), p, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, out)
}

// ListByPaciente serves /pacientes/{id}/registros.
func (h *Handler) ListByPaciente(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	pacienteID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	out, err := h.Service.ListByPaciente(r.Context(), p, pacienteID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, RegistrosResponse{Registros: out})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto RegistroDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	out, err := h.Service.Update(r.Context(), p, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), p, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddVacunaAplicada(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto VacunaDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	out, err := h.Service.AddVacunaAplicada(r.Context(), p, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, out)
}
