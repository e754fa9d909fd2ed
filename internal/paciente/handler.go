package paciente

import (
	"context"
	"net/http"

	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	"github.com/frahmantamala/vaccination-registry/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, p *access.Principal, dto PacienteDTO) (*Paciente, error)
	Get(ctx context.Context, p *access.Principal, id int64) (*Paciente, error)
	List(ctx context.Context, p *access.Principal, filter ListFilter) ([]*Paciente, int64, error)
	Update(ctx context.Context, p *access.Principal, id int64, dto PacienteDTO) (*Paciente, error)
	Delete(ctx context.Context, p *access.Principal, id int64) error
	AddAntecedente(ctx context.Context, p *access.Principal, pacienteID int64, dto CreateAntecedenteDTO) (*Antecedente, error)
	ListAntecedentes(ctx context.Context, p *access.Principal, pacienteID int64) ([]*Antecedente, error)
	DeleteAntecedente(ctx context.Context, p *access.Principal, pacienteID, antecedenteID int64) error
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	limit, offset := h.Pagination(r)
	filter := ListFilter{Search: r.URL.Query().Get("q"), Limit: limit, Offset: offset}
	pacientes, total, err := h.Service.List(r.Context(), p, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PacientesResponse{Pacientes: pacientes, Total: total, Limit: limit, Offset: offset})
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

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto PacienteDTO
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

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto PacienteDTO
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

func (h *Handler) ListAntecedentes(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	out, err := h.Service.ListAntecedentes(r.Context(), p, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, AntecedentesResponse{Antecedentes: out})
}

func (h *Handler) AddAntecedente(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto CreateAntecedenteDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	out, err := h.Service.AddAntecedente(r.Context(), p, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, out)
}

func (h *Handler) DeleteAntecedente(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}
	antecedenteID, ok := h.PathID(w, r, "antecedenteID")
	if !ok {
		return
	}

	if err := h.Service.DeleteAntecedente(r.Context(), p, id, antecedenteID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
