package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// LoginPageData contains data for rendering the code-entry page
type LoginPageData struct {
	AppName      string
	InstanceURL  string
	AuthorizeURL string
	Messages     []string
	Expired      bool
}

// LoginPageHandler displays the login page (GET /). An authenticated browser
// is sent straight to its home timeline.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	loginTmpl := MustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		id, session, ok := s.loadSession(r)
		if ok && session.IsAuthenticated() && !session.IsExpired() {
			http.Redirect(w, r, RouteHome, http.StatusSeeOther)
			return
		}

		data := LoginPageData{
			AppName:      s.config.AppName,
			InstanceURL:  s.client.InstanceURL(),
			AuthorizeURL: s.client.AuthorizeURL(),
			Expired:      r.URL.Query().Get("expired") == "1",
		}

		// Flash messages render once, then disappear from the record.
		if ok && len(session.PendingMessages) > 0 {
			data.Messages = session.ConsumeMessages()
			if err := s.sessions.Upsert(r.Context(), id, session); err != nil {
				log.Err(err).Msg("Failed to persist drained flash messages")
			}
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := loginTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render login template")
			http.Error(w, "Failed to render login page", http.StatusInternalServerError)
		}
	}
}

// CodeSubmissionHandler processes the pasted authorization code (POST /login).
func (s *Server) CodeSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		id, _, err := s.ensureSession(w, r)
		if err != nil {
			log.Err(err).Msg("Failed to create session")
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}

		newID, err := s.auth.Login(r.Context(), id, r.FormValue("code"))
		if err != nil {
			// The failure is already queued as a flash message; never log the
			// code or any token material.
			log.Warn().Err(err).Msg("Login failed")
			http.Redirect(w, r, RouteIndex, http.StatusSeeOther)
			return
		}

		s.SetSessionCookie(w, r, newID)
		http.Redirect(w, r, RouteHome, http.StatusSeeOther)
	}
}

// TokenSubmissionHandler processes the direct-token form (POST /login/token):
// the user supplies their instance and an access token they already hold.
func (s *Server) TokenSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		id, _, err := s.ensureSession(w, r)
		if err != nil {
			log.Err(err).Msg("Failed to create session")
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}

		newID, err := s.auth.LoginWithToken(r.Context(), id, r.FormValue("instance"), r.FormValue("access_token"))
		if err != nil {
			log.Warn().Err(err).Msg("Token login failed")
			http.Redirect(w, r, RouteIndex, http.StatusSeeOther)
			return
		}

		s.SetSessionCookie(w, r, newID)
		http.Redirect(w, r, RouteHome, http.StatusSeeOther)
	}
}

// LogoutHandler destroys the session and clears the cookie (GET /logout).
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id, _, ok := s.loadSession(r); ok {
			if err := s.auth.Logout(r.Context(), id); err != nil {
				log.Err(err).Msg("Failed to destroy session on logout")
			}
		}
		s.ClearSessionCookie(w, r)
		http.Redirect(w, r, RouteIndex, http.StatusSeeOther)
	}
}
