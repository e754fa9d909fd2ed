package catalog

import (
	"context"
	"net/http"

	"github.com/frahmantamala/vaccination-registry/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, empresaID int64, kind Kind, onlyActive bool) ([]*Entry, error)
	Get(ctx context.Context, empresaID int64, kind Kind, id int64) (*Entry, error)
	Create(ctx context.Context, empresaID int64, kind Kind, dto CreateEntryDTO) (*Entry, error)
	Update(ctx context.Context, empresaID int64, kind Kind, id int64, dto UpdateEntryDTO) (*Entry, error)
	Delete(ctx context.Context, empresaID int64, kind Kind, id int64) error
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

func (h *Handler) kind(w http.ResponseWriter, r *http.Request) (Kind, bool) {
	kind, err := ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.HandleServiceError(w, err)
		return "", false
	}
	return kind, true
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}

	onlyActive := r.URL.Query().Get("active") == "true"
	entries, err := h.Service.List(r.Context(), p.EmpresaID, kind, onlyActive)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, EntriesResponse{Kind: kind, Entries: entries})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	entry, err := h.Service.Get(r.Context(), p.EmpresaID, kind, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}

	var dto CreateEntryDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	entry, err := h.Service.Create(r.Context(), p.EmpresaID, kind, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, entry)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto UpdateEntryDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	entry, err := h.Service.Update(r.Context(), p.EmpresaID, kind, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), p.EmpresaID, kind, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
