package menu

import (
	"context"
	"net/http"

	"github.com/frahmantamala/vaccination-registry/internal/transport"
)

type ServiceAPI interface {
	Resolve(ctx context.Context, identity string) (*Authorization, error)
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

// GetMenu handles GET /menu: the caller's navigation tree and capability
// table for the rendering layer.
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	auth, err := h.Service.Resolve(r.Context(), p.Username)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, auth)
}
