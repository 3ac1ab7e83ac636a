// Package middleware provides the chi-compatible HTTP middleware chain:
// request ID, structured logging, panic recovery, rate limiting,
// tracing, security headers, and timeout enforcement.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dinnerarbiter/core/internal/infrastructure/config"
	apperrors "github.com/dinnerarbiter/core/pkg/errors"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	householdKey contextKey = "household_key"
)

// Middleware holds the shared state every middleware function closes
// over: config, logger, rate limiter, tracer, and metrics.
type Middleware struct {
	config  *config.Config
	logger  *zap.Logger
	limiter *rate.Limiter
	tracer  trace.Tracer
	metrics *Metrics
}

func New(cfg *config.Config, logger *zap.Logger) *Middleware {
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerMin)/60, cfg.RateLimit.BurstSize)
	return &Middleware{
		config:  cfg,
		logger:  logger,
		limiter: limiter,
		tracer:  otel.Tracer("dinner-arbiter"),
		metrics: NewMetrics(),
	}
}

// RequestIDFromContext extracts the request id set by RequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// HouseholdKeyFromContext extracts the household key set by the auth
// middleware (internal/infrastructure/security).
func HouseholdKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(householdKey).(string)
	return key
}

// WithHouseholdKey stores the resolved household key on the request
// context; called by the auth middleware after validating the bearer
// token.
func WithHouseholdKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, householdKey, key)
}

// RequestID assigns (or propagates) a request id on every request.
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logger logs each completed request with structured fields, skipping
// the health check path to keep liveness polling quiet.
func (m *Middleware) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == m.config.Monitoring.HealthCheckPath {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		latency := time.Since(start)

		fields := []zap.Field{
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("latency", latency),
		}
		switch {
		case rec.status >= 500:
			m.logger.Error("request failed", fields...)
		case rec.status >= 400:
			m.logger.Warn("request rejected", fields...)
		default:
			m.logger.Info("request completed", fields...)
		}
		m.metrics.RecordRequest(r.Method, r.URL.Path, rec.status, latency)
	})
}

// Recovery converts a panic into a 500 response instead of crashing the
// server.
func (m *Middleware) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				m.logger.Error("panic recovered",
					zap.String("request_id", RequestIDFromContext(r.Context())),
					zap.Any("panic", rec),
					zap.String("stack", string(debug.Stack())),
				)
				writeJSONError(w, apperrors.NewInternalError("internal server error"), RequestIDFromContext(r.Context()))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RateLimit enforces the configured requests-per-minute/burst pair,
// sized for the OCR suspension point on /receipt/import.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow() {
			writeJSONError(w, apperrors.NewAppError(apperrors.CodeTooManyRequests, "rate limit exceeded", ""), RequestIDFromContext(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Tracing starts one span per request when tracing is enabled.
func (m *Middleware) Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.config.Monitoring.EnableTracing {
			next.ServeHTTP(w, r)
			return
		}
		ctx, span := m.tracer.Start(r.Context(), fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.url", r.URL.String()),
				attribute.String("request.id", RequestIDFromContext(r.Context())),
			),
		)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Security sets a baseline of response security headers.
func (m *Middleware) Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// Timeout bounds request processing; on expiry it returns 503 rather
// than leaving the client hanging. /decision applies its own internal
// 30s deadline on top of this as a backstop (see DecisionService.Decide).
func (m *Middleware) Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			r = r.WithContext(ctx)

			done := make(chan struct{})
			go func() {
				next.ServeHTTP(w, r)
				close(done)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				writeJSONError(w, apperrors.NewTimeoutError("request"), RequestIDFromContext(ctx))
			}
		})
	}
}

func writeJSONError(w http.ResponseWriter, appErr *apperrors.AppError, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	_ = json.NewEncoder(w).Encode(apperrors.ToErrorResponse(appErr, requestID))
}

// Metrics holds the Prometheus collectors for HTTP request duration and
// request count, recorded by the Logger middleware. No other component
// records metrics.
type Metrics struct {
	requestDuration *prometheus.HistogramVec
	requestCount    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	requestCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	prometheus.MustRegister(requestDuration, requestCount)
	return &Metrics{requestDuration: requestDuration, requestCount: requestCount}
}

func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	statusStr := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, statusStr).Observe(duration.Seconds())
	m.requestCount.WithLabelValues(method, path, statusStr).Inc()
}

// Handler returns the Prometheus scrape handler for the collectors
// registered in NewMetrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

// MetricsHandler exposes the scrape handler for the Middleware's shared
// Metrics collector, for mounting at /metrics.
func (m *Middleware) MetricsHandler() http.Handler {
	return m.metrics.Handler()
}
