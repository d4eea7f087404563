package httpx

import (
	"net/http"

	"libraryapi/internal/audit"
)

const actorHeader = "X-Actor"

// ActorMiddleware puts the caller's identity from the X-Actor header into
// the request context so repositories can stamp created_by/updated_by. It is
// attribution only, not authorization.
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := r.Header.Get(actorHeader)
		if actor == "" {
			actor = audit.SystemActor
		}
		next.ServeHTTP(w, r.WithContext(audit.ContextWithActor(r.Context(), actor)))
	})
}
