package middleware

import (
	"net/http"
	"time"

	"smarthr/internal/platform/logger"
	"smarthr/internal/platform/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logger attaches a request-scoped logger, logs each request on completion
// and feeds the metrics collector when one is given.
func Logger(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			ctx := logger.With(r.Context(), "request_id", GetRequestID(r.Context()))
			next.ServeHTTP(recorder, r.WithContext(ctx))

			duration := time.Since(start)
			collector.Record(recorder.status, duration)
			logger.From(ctx).Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"duration_ms", duration.Milliseconds(),
			)
		})
	}
}
