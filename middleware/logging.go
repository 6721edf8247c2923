package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	RequestIDHeader    = "X-Request-ID"
	slowRequestTimeout = 500 * time.Millisecond
)

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs every request at debug, and slow or failed ones
// at warn. Each request gets an id, reused from the client when sent.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		logger := log.With().Str("request_id", requestID).Logger()
		r = r.WithContext(logger.WithContext(r.Context()))

		wrapper := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		elapsed := time.Since(start)
		level := zerolog.DebugLevel
		if elapsed > slowRequestTimeout || wrapper.status >= http.StatusBadRequest {
			level = zerolog.WarnLevel
		}

		event := logger.WithLevel(level)
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			event = event.Str("forwarded_for", xff)
		}
		event.
			Str("method", r.Method).
			Str("uri", r.RequestURI).
			Str("remote", RemoteIP(r)).
			Int("status", wrapper.status).
			Dur("elapsed", elapsed).
			Msg("request")
	})
}
