package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/itchan-dev/feedback/shared/logger"
	"github.com/itchan-dev/feedback/shared/middleware/metrics"
)

// AccessLog logs one line per request through the shared slog logger.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := metrics.NewStatusRecorder(w)
		next.ServeHTTP(wrapped, r)

		level := logger.Log.Info
		if wrapped.Status >= http.StatusInternalServerError {
			level = logger.Log.Error
		}
		level("request",
			"component", "http",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"route", metrics.RoutePattern(r),
			"status", wrapped.Status,
			"duration", time.Since(start))
	})
}
