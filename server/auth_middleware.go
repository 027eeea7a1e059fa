package server

import (
	"context"
	"net/http"

	"github.com/paperfeed/paperfeed/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySessionID stores the request's session identifier
	ContextKeySessionID ContextKey = "session_id"
	// ContextKeySession stores the loaded session record
	ContextKeySession ContextKey = "session"
)

// RequireSession guards the timeline views. The authentication predicate is
// re-evaluated on every request against the store; nothing is cached in the
// browser beyond the opaque identifier.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id, session, ok := s.loadSession(r)
			if !ok || !session.IsAuthenticated() {
				http.Redirect(w, r, RouteIndex, http.StatusSeeOther)
				return
			}

			if session.IsExpired() {
				s.expireSession(w, r, id)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySessionID, id)
			ctx = context.WithValue(ctx, ContextKeySession, session)
			next(w, r.WithContext(ctx))
		}
	}
}

// requestSession pulls the session RequireSession stored on the context.
func requestSession(r *http.Request) (string, sessions.Session, bool) {
	id, okID := r.Context().Value(ContextKeySessionID).(string)
	session, okSession := r.Context().Value(ContextKeySession).(sessions.Session)
	return id, session, okID && okSession
}
