package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	"github.com/frahmantamala/vaccination-registry/internal/core/metrics"
	"github.com/frahmantamala/vaccination-registry/internal/transport"
)

// RBACAuthorization guards routes with a capability on a menu resource.
// It runs after AuthMiddleware placed the principal in the context.
type RBACAuthorization struct {
	*transport.BaseHandler
	metrics *metrics.Metrics
}

func NewRBACAuthorization(logger *slog.Logger, m *metrics.Metrics) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		metrics:     m,
	}
}

func (ra *RBACAuthorization) Check(next http.HandlerFunc, resource string, action access.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := ra.Principal(w, r)
		if !ok {
			return
		}

		allowed := p.Can(resource, action)
		ra.metrics.Decision(resource, string(action), allowed)
		if !allowed {
			ra.Logger.WarnContext(r.Context(), "access denied: missing capability",
				"user_id", p.UserID,
				"empresa_id", p.EmpresaID,
				"resource", resource,
				"action", action)
			ra.WriteAppError(w, internal.ErrAccessDenied)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// Require returns chi compatible middleware for one capability.
func (ra *RBACAuthorization) Require(resource string, action access.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, resource, action)
	}
}

func (ra *RBACAuthorization) RequireRead(resource string) func(http.Handler) http.Handler {
	return ra.Require(resource, access.ActionRead)
}

func (ra *RBACAuthorization) RequireCreate(resource string) func(http.Handler) http.Handler {
	return ra.Require(resource, access.ActionCreate)
}

func (ra *RBACAuthorization) RequireUpdate(resource string) func(http.Handler) http.Handler {
	return ra.Require(resource, access.ActionUpdate)
}

func (ra *RBACAuthorization) RequireDelete(resource string) func(http.Handler) http.Handler {
	return ra.Require(resource, access.ActionDelete)
}
