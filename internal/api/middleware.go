package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/yelinaung/event-crm/internal/apperr"
	"gitlab.com/yelinaung/event-crm/internal/logger"
)

// requireToken rejects requests without the configured bearer token.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || s.token == "" || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.token)) != 1 {
			writeError(w, r, apperr.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// spanName names the request span after the matched route template so
// traces group by endpoint rather than by concrete id.
func spanName(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				trace.SpanFromContext(r.Context()).SetName(r.Method + " " + tmpl)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog logs one line per request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)

		log := logger.Component("api")
		event := log.Info()
		if m.Code >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", m.Code).
			Dur("duration", m.Duration).
			Int64("bytes", m.Written).
			Msg("HTTP request")
	})
}
