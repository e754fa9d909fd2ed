package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	"github.com/frahmantamala/vaccination-registry/internal/menu"
	"github.com/frahmantamala/vaccination-registry/internal/transport"
	"github.com/frahmantamala/vaccination-registry/pkg/logger"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
}

// Authorizer resolves an identity into its capabilities.
type Authorizer interface {
	Resolve(ctx context.Context, identity string) (*menu.Authorization, error)
}

type Handler struct {
	*transport.BaseHandler
	Service    ServiceAPI
	Authorizer Authorizer
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, authorizer Authorizer) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
		Authorizer:  authorizer,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("authentication failed", "username", dto.Username, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto.RefreshToken)
	if err != nil {
		h.Logger.Warn("token refresh failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout only validates the token. Tokens are stateless and expire on their own.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteAppError(w, internal.ErrInvalidToken)
		return
	}

	if _, err := h.Service.ValidateAccessToken(token); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the principal resolved for the current request.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

// AuthMiddleware validates the bearer token and resolves the caller's
// authorization. Requests without a resolvable active user are rejected, and
// a failing authorization store denies access instead of letting it through.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.Logger.Warn("auth middleware: missing authorization token", "path", r.URL.Path)
			h.WriteAppError(w, internal.ErrInvalidToken)
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Warn("token validation failed", "error", err)
			h.HandleServiceError(w, err)
			return
		}

		auth, err := h.Authorizer.Resolve(r.Context(), claims.Username())
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}

		principal := auth.Principal()
		if !principal.Authenticated() {
			h.Logger.Warn("auth middleware: identity has no access", "username", claims.Username())
			h.WriteAppError(w, internal.ErrInvalidToken)
			return
		}

		ctx := internal.ContextWithIdentity(r.Context(), principal.Username)
		ctx = access.ContextWithPrincipal(ctx, principal)
		ctx = logger.With(ctx, "user_id", principal.UserID, "empresa_id", principal.EmpresaID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
