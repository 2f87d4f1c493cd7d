package middleware

import (
	"fmt"
	"net/http"
	"time"

	"para-predict/internal/infra/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LoggingMiddleware tags every request with an id and logs method, path,
// status and duration.
func LoggingMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()
			wrappedWriter := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			start := time.Now()
			next.ServeHTTP(wrappedWriter, r)

			log.Info(fmt.Sprintf("Request: %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr), logrus.Fields{
				"request_id": requestID,
				"status":     wrappedWriter.statusCode,
				"duration":   time.Since(start).String(),
			})
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
