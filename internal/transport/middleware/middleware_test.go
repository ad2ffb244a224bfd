package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/transport/middleware"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transport Middleware Suite")
}

var _ = Describe("RequestID", func() {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	It("should generate a trace ID and echo it on the response", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/assets", nil)

		middleware.RequestID(okHandler).ServeHTTP(rec, req)

		Expect(rec.Header().Get("X-Trace-ID")).ToNot(BeEmpty())
	})

	It("should propagate a caller-supplied trace ID", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/assets", nil)
		req.Header.Set("X-Trace-ID", "trace-123")

		middleware.RequestID(okHandler).ServeHTTP(rec, req)

		Expect(rec.Header().Get("X-Trace-ID")).To(Equal("trace-123"))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	var (
		logOutput *bytes.Buffer
		logger    *slog.Logger
	)

	BeforeEach(func() {
		logOutput = &bytes.Buffer{}
		logger = slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: slog.LevelInfo}))
	})

	It("should redact credentials from the logged request body", func() {
		handler := middleware.LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		body := strings.NewReader(`{"email":"budi@company.example","password":"hunter2"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
		req.Header.Set("Authorization", "Bearer secret-token")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		Expect(logOutput.String()).ToNot(ContainSubstring("hunter2"))
		Expect(logOutput.String()).ToNot(ContainSubstring("secret-token"))
		Expect(logOutput.String()).To(ContainSubstring("[REDACTED]"))
		Expect(logOutput.String()).To(ContainSubstring("budi@company.example"))
	})

	It("should leave the request body readable for the handler", func() {
		var seen string
		handler := middleware.LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			buf := new(bytes.Buffer)
			buf.ReadFrom(r.Body)
			seen = buf.String()
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/assets", strings.NewReader(`{"asset_tag":"LT-0001"}`))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		Expect(seen).To(Equal(`{"asset_tag":"LT-0001"}`))
	})

	It("should pass the response through untouched and log its status", func() {
		handler := middleware.LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"asset not found"}`))
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/assets/99", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Body.String()).To(Equal(`{"message":"asset not found"}`))
		Expect(logOutput.String()).To(ContainSubstring("status_code=404"))
	})
})

var _ = Describe("UserContext", func() {
	It("should run the next handler with the actor still in context", func() {
		var actorSeen int64
		handler := middleware.UserContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorSeen = internal.ActorIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/employees/me", nil)
		req = req.WithContext(internal.ContextWithActorID(req.Context(), 42))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(actorSeen).To(Equal(int64(42)))
	})

	It("should be a no-op without an authenticated actor", func() {
		handler := middleware.UserContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
	})
})
