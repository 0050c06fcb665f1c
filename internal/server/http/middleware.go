package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type ctxKey struct{}

// cors allows browser pages on any origin to post events.
func cors() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.SetHeader("Access-Control-Allow-Origin", "*"),
		middleware.SetHeader("Access-Control-Allow-Methods", "POST, OPTIONS"),
		middleware.SetHeader("Access-Control-Allow-Headers", "Content-Type, referer"),
	}
}

// requestID keeps the caller's X-Request-ID or assigns a new one, and echoes it back.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
