package middleware

import (
	"net/http"
	"time"

	"github.com/akorchagin/pollster/internal/metrics"
)

func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lw := &logWriter{
				ResponseWriter: w,
				data:           logData{responseStatus: http.StatusOK},
			}

			next.ServeHTTP(lw, r)

			metrics.ObserveRequest(r.Method, lw.data.responseStatus, time.Since(start).Seconds())
		})
	}
}
