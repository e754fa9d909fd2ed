package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	applog "github.com/frahmantamala/vaccination-registry/pkg/logger"
)

// Keys containing any of these are masked in logged headers and bodies.
// Patient identity and contact data counts as sensitive.
var sensitiveFields = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"api_key",
	"session",
	"credential",
	"numero_identificacion",
	"telefono",
	"direccion",
	"email",
}

const (
	maxLoggedBody = 4 << 10
	redacted      = "[FILTERED]"
)

// LoggingMiddleware logs every request and its response through the request
// scoped logger, falling back to base when none is set.
func LoggingMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := requestLogger(r, base)
			start := time.Now()

			log.InfoContext(r.Context(), "incoming request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", maskHeaders(r.Header),
				"body", readRequestBody(r),
			)

			rec := &recordingWriter{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			var body string
			if isJSON(rec.Header().Get("Content-Type")) && !rec.truncated {
				body = maskBody(rec.body.Bytes())
			}

			log.Log(r.Context(), levelFor(status), "response",
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", rec.size,
				"body", body,
			)
		})
	}
}

func requestLogger(r *http.Request, base *slog.Logger) *slog.Logger {
	if TraceID(r.Context()) != "" || base == nil {
		return applog.From(r.Context())
	}
	return base
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// recordingWriter keeps the status and at most maxLoggedBody bytes of the
// response.
type recordingWriter struct {
	http.ResponseWriter
	status    int
	size      int
	body      bytes.Buffer
	truncated bool
}

func (rw *recordingWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	if rw.body.Len()+len(b) <= maxLoggedBody {
		rw.body.Write(b)
	} else {
		rw.truncated = true
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "application/json")
}

// readRequestBody returns the masked JSON body and restores it for the
// handler. Spreadsheet uploads and other payloads are not read.
func readRequestBody(r *http.Request) string {
	if r.Body == nil || !isJSON(r.Header.Get("Content-Type")) {
		return ""
	}
	raw, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) > maxLoggedBody {
		return ""
	}
	return maskBody(raw)
}

func isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, field := range sensitiveFields {
		if strings.Contains(key, field) {
			return true
		}
	}
	return false
}

func maskHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			out[name] = redacted
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func maskBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return "[unparseable body]"
	}
	masked, err := json.Marshal(maskValue(doc))
	if err != nil {
		return "[unparseable body]"
	}
	return string(masked)
}

func maskValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for key, inner := range t {
			if isSensitive(key) {
				t[key] = redacted
				continue
			}
			t[key] = maskValue(inner)
		}
		return t
	case []interface{}:
		for i := range t {
			t[i] = maskValue(t[i])
		}
		return t
	default:
		return v
	}
}
