package server

import (
	"net/http"

	"github.com/paperfeed/paperfeed/sessions"
	"github.com/rs/zerolog/log"
)

// sessionCookieName is the only piece of state the browser holds.
const sessionCookieName = "session_id"

// loadSession resolves the request's cookie to a stored session. A missing
// cookie, an unknown identifier, or an expired record all behave as an
// anonymous browser.
func (s *Server) loadSession(r *http.Request) (string, sessions.Session, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", sessions.Session{}, false
	}

	session, err := s.sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		return "", sessions.Session{}, false
	}
	return cookie.Value, session, true
}

// ensureSession returns the request's session, creating and persisting an
// anonymous one when the browser arrives without a usable cookie.
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) (string, sessions.Session, error) {
	if id, session, ok := s.loadSession(r); ok {
		return id, session, nil
	}

	id := sessions.NewID()
	session := sessions.New(s.config.SessionTTL)
	if err := s.sessions.Upsert(r.Context(), id, session); err != nil {
		return "", sessions.Session{}, err
	}
	s.SetSessionCookie(w, r, id)
	return id, session, nil
}

func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.SessionTTL.Seconds()),
	})
}

func (s *Server) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// expireSession tears the session down after the instance answered 401 and
// sends the browser back to the entry point with the expiry indicator set.
// Identical to logout server-side, distinguishable client-side.
func (s *Server) expireSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.auth.Expire(r.Context(), sessionID); err != nil {
		log.Err(err).Msg("Failed to destroy expired session")
	}
	s.ClearSessionCookie(w, r)
	http.Redirect(w, r, RouteIndex+"?expired=1", http.StatusSeeOther)
}
