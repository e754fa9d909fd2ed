package reporte

import (
	"context"
	"net/http"

	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	"github.com/frahmantamala/vaccination-registry/internal/transport"
)

type ServiceAPI interface {
	VacunacionPorInsumo(ctx context.Context, p *access.Principal, desde, hasta string) (*VacunacionPorInsumoReport, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

// VacunacionPorInsumo serves GET /reportes/vacunacion?desde=YYYY-MM-DD&hasta=YYYY-MM-DD.
func (h *Handler) VacunacionPorInsumo(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	report, err := h.Service.VacunacionPorInsumo(r.Context(), p, q.Get("desde"), q.Get("hasta"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}
