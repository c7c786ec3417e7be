package middleware

import (
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/iho/stockledger/internal/usecase"
)

// ActorHeader names the user recorded on audit logs.
const ActorHeader = "X-Actor"

// RequestContext copies the caller and chi's request ID into the request
// context so use cases can stamp them on audit logs. It must run after
// chimiddleware.RequestID.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if actor := strings.TrimSpace(r.Header.Get(ActorHeader)); actor != "" {
			ctx = usecase.WithActor(ctx, actor)
		}
		if id := chimiddleware.GetReqID(ctx); id != "" {
			ctx = usecase.WithRequestID(ctx, id)
			w.Header().Set(chimiddleware.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
