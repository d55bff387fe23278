package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// withRequestID tags every request with an id so log lines from one request
// can be correlated.
func (h *Handler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), requestIDKey, uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// log returns the handler logger with the request id attached.
func (h *Handler) log(r *http.Request) *zap.Logger {
	if reqID, ok := r.Context().Value(requestIDKey).(string); ok {
		return h.logger.With(zap.String("request_id", reqID))
	}
	return h.logger
}

// withAuth resolves the bearer token to an owner id and hands it to the
// wrapped handler. Everything behind it is owner-scoped.
func (h *Handler) withAuth(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			http.Error(w, "Missing bearer token", http.StatusUnauthorized)
			return
		}

		ownerID, err := h.auth.Authenticate(token)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next(w, r, ownerID)
	}
}
