package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

// OpenAPIValidator checks requests against the published contract before
// they reach a handler. Routes the document does not describe pass through.
type OpenAPIValidator struct {
	router routers.Router
	logger *slog.Logger
}

func NewOpenAPIValidator(ctx context.Context, specPath string, logger *slog.Logger) (*OpenAPIValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(specPath)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	// paths carry the full /api/v1 prefix, match on path only
	doc.Servers = nil

	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &OpenAPIValidator{router: router, logger: logger}, nil
}

func (v *OpenAPIValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := v.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				// spreadsheet uploads are checked by the importer itself
				ExcludeRequestBody: !isJSON(r.Header.Get("Content-Type")),
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			v.logger.WarnContext(r.Context(), "request rejected by openapi validation",
				"method", r.Method,
				"path", r.URL.Path,
				"error", err)
			writeValidationError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeValidationError(w http.ResponseWriter, err error) {
	message := "request does not match the API contract"
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Parameter != nil {
			message = fmt.Sprintf("invalid %s parameter %q", reqErr.Parameter.In, reqErr.Parameter.Name)
		} else if reqErr.RequestBody != nil {
			message = "invalid request body"
		}
		if reqErr.Reason != "" {
			message += ": " + strings.TrimSpace(reqErr.Reason)
		}
	}

	appErr := internal.NewValidationError(message, internal.ErrCodeValidationFailed)
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
