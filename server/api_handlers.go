package server

import (
	"encoding/json"
	"net/http"

	"github.com/paperfeed/paperfeed/mastodon"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Failed to encode JSON response")
	}
}

// TimelineMoreHandler serves the incremental "more posts" fetch
// (GET /api/timeline/{view}/more?max_id=...). It answers JSON so the page can
// append posts without a full refresh.
func (s *Server) TimelineMoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := mastodon.ParseTimelineView(r.PathValue("view"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "unknown timeline view"})
			return
		}

		maxID := r.URL.Query().Get("max_id")
		if maxID == "" {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "max_id is required"})
			return
		}

		id, session, ok := s.loadSession(r)
		if !ok || !session.IsAuthenticated() || session.IsExpired() {
			writeJSON(w, http.StatusUnauthorized, apiError{Error: "not authenticated"})
			return
		}

		statuses, err := s.client.TimelineAt(r.Context(), session.InstanceURL, session.AccessToken, view, mastodon.TimelineOptions{
			Limit: s.config.PageSize,
			MaxID: maxID,
		})
		if err != nil {
			if errors.Is(err, mastodon.InvalidTokenErr) {
				if expireErr := s.auth.Expire(r.Context(), id); expireErr != nil {
					log.Err(expireErr).Msg("Failed to destroy expired session")
				}
				s.ClearSessionCookie(w, r)
				writeJSON(w, http.StatusUnauthorized, apiError{Error: "session expired"})
				return
			}

			log.Err(err).Str("view", string(view)).Msg("Failed to fetch more posts")
			writeJSON(w, http.StatusBadGateway, apiError{Error: "instance unavailable"})
			return
		}

		writeJSON(w, http.StatusOK, statuses)
	}
}
