package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
)

// redactedFields are substrings of header and JSON field names whose values
// never reach the logs.
var redactedFields = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"api_key",
	"credential",
	"auth",
}

// maxLoggedBody caps how much of a request or response body is captured for
// logging. Anything longer is truncated, not dropped.
const maxLoggedBody = 4 << 10

// LoggingMiddleware logs every request and its response with credential
// material redacted. Status >= 400 logs at warn, >= 500 at error.
func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := middleware.GetReqID(r.Context())

			logger.Info("incoming request",
				"request_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", redactHeaders(r.Header),
				"body", captureRequestBody(r),
			)

			rec := &responseRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "response",
				"request_id", reqID,
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", rec.size,
				"body", redactBody(rec.body.Bytes()),
			)
		})
	}
}

// responseRecorder keeps the status and a bounded copy of the body while
// passing everything through to the client.
type responseRecorder struct {
	http.ResponseWriter
	status int
	size   int
	body   bytes.Buffer
}

func (rec *responseRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *responseRecorder) Write(b []byte) (int, error) {
	rec.size += len(b)
	if remaining := maxLoggedBody - rec.body.Len(); remaining > 0 {
		if len(b) > remaining {
			rec.body.Write(b[:remaining])
		} else {
			rec.body.Write(b)
		}
	}
	return rec.ResponseWriter.Write(b)
}

// captureRequestBody reads the body for logging and restores it so handlers
// can decode it normally.
func captureRequestBody(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	if len(bodyBytes) > maxLoggedBody {
		bodyBytes = bodyBytes[:maxLoggedBody]
	}
	return redactBody(bodyBytes)
}

func isRedactedName(name string) bool {
	lower := strings.ToLower(name)
	for _, field := range redactedFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isRedactedName(name) {
			out[name] = "[REDACTED]"
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// redactBody masks sensitive JSON fields. Non-JSON payloads that mention a
// sensitive name are withheld entirely rather than partially scrubbed.
func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var parsed interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		if isRedactedName(string(body)) {
			return "[REDACTED]"
		}
		return string(body)
	}

	redacted, err := json.Marshal(redactJSON(parsed))
	if err != nil {
		return "[REDACTED]"
	}
	return string(redacted)
}

func redactJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isRedactedName(key) {
				out[key] = "[REDACTED]"
				continue
			}
			out[key] = redactJSON(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = redactJSON(item)
		}
		return out
	default:
		return v
	}
}
