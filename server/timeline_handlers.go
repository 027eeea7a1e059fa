package server

import (
	"net/http"

	"github.com/paperfeed/paperfeed/mastodon"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// TimelinePageData contains data for rendering a timeline view
type TimelinePageData struct {
	AppName     string
	View        string
	DisplayName string
	Username    string
	Statuses    []mastodon.Status
	NextMaxID   string
}

// ErrorPageData contains data for rendering the upstream-failure page
type ErrorPageData struct {
	AppName string
	Message string
	View    string
}

// TimelineHandler renders one timeline view. The view is fixed per route, so
// each registration gets its own handler instance.
func (s *Server) TimelineHandler(view string) http.HandlerFunc {
	timelineTmpl := MustParseTemplate("timeline.html")
	errorTmpl := MustParseTemplate("error.html")

	timelineView, err := mastodon.ParseTimelineView(view)
	if err != nil {
		panic("Unknown timeline view registered: " + view)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, session, ok := requestSession(r)
		if !ok {
			http.Redirect(w, r, RouteIndex, http.StatusSeeOther)
			return
		}

		statuses, err := s.client.TimelineAt(r.Context(), session.InstanceURL, session.AccessToken, timelineView, mastodon.TimelineOptions{
			Limit: s.config.PageSize,
		})
		if err != nil {
			// A revoked or expired token ends the session. Any other upstream
			// failure leaves the session intact for a retry.
			if errors.Is(err, mastodon.InvalidTokenErr) {
				s.expireSession(w, r, id)
				return
			}

			log.Err(err).Str("view", view).Msg("Failed to fetch timeline")
			w.Header().Set("Content-Type", contentTypeHTML)
			w.WriteHeader(http.StatusBadGateway)
			renderErr := errorTmpl.Execute(w, ErrorPageData{
				AppName: s.config.AppName,
				Message: "Could not reach your instance. Your session is still active, try again in a moment.",
				View:    view,
			})
			if renderErr != nil {
				log.Err(renderErr).Msg("Failed to render error template")
			}
			return
		}

		data := TimelinePageData{
			AppName:     s.config.AppName,
			View:        view,
			DisplayName: session.User.DisplayName,
			Username:    session.User.Username,
			Statuses:    statuses,
		}
		if len(statuses) > 0 {
			data.NextMaxID = statuses[len(statuses)-1].ID
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := timelineTmpl.Execute(w, data); err != nil {
			log.Err(err).Str("view", view).Msg("Failed to render timeline template")
		}
	}
}
