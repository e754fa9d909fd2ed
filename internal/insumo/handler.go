package insumo

import (
	"context"
	"net/http"

	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	"github.com/frahmantamala/vaccination-registry/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, p *access.Principal, dto CreateInsumoDTO) (*Insumo, error)
	Get(ctx context.Context, p *access.Principal, id int64) (*Insumo, error)
	List(ctx context.Context, p *access.Principal, onlyActive bool) ([]*Insumo, error)
	Deactivate(ctx context.Context, p *access.Principal, id int64) error
	RegisterEntrada(ctx context.Context, p *access.Principal, insumoID int64, dto RegisterEntradaDTO) (*Entrada, error)
	ListEntradas(ctx context.Context, p *access.Principal, insumoID int64) ([]*Entrada, error)
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

	insumos, err := h.Service.List(r.Context(), p, r.URL.Query().Get("active") == "true")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, InsumosResponse{Insumos: insumos})
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

	var dto CreateInsumoDTO
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

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.Deactivate(r.Context(), p, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListEntradas(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	out, err := h.Service.ListEntradas(r.Context(), p, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, EntradasResponse{Entradas: out})
}

func (h *Handler) RegisterEntrada(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto RegisterEntradaDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	out, err := h.Service.RegisterEntrada(r.Context(), p, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, out)
}
