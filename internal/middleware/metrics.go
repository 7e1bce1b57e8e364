package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cmeetit/cmeetit/internal/metrics"
)

// Metrics records request duration by route pattern, so path parameters do
// not create new series.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(r.Method, path, strconv.Itoa(rw.statusCode), time.Since(start))
	})
}
