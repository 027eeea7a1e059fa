// Package server is the HTTP layer: it loads the browser session for each
// request, guards the timeline views behind the authentication predicate,
// and delegates login transitions to the auth service.
package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/paperfeed/paperfeed/auth"
	"github.com/paperfeed/paperfeed/internal/config"
	"github.com/paperfeed/paperfeed/mastodon"
	"github.com/paperfeed/paperfeed/server/ui"
	"github.com/paperfeed/paperfeed/sessions"
	"github.com/pkg/errors"
)

type Server struct {
	mux        *http.ServeMux
	routes     []string
	fileServer http.Handler
	config     config.Config
	auth       *auth.Service
	sessions   sessions.Repo
	client     *mastodon.Client
}

func New(cfg config.Config, sessionRepo sessions.Repo, client *mastodon.Client) (*Server, error) {
	authService, err := auth.NewService(auth.Deps{
		Sessions:  sessionRepo,
		Exchanger: client,
		Verifier:  client,
	}, client.InstanceURL(), cfg.SessionTTL)
	if err != nil {
		return nil, errors.Wrap(err, "[server.New] failed to create auth service")
	}

	s := &Server{
		mux:        http.NewServeMux(),
		config:     cfg,
		auth:       authService,
		sessions:   sessionRepo,
		client:     client,
		fileServer: FileServerHandler(),
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if !s.config.IsDev() {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := ui.MethodColors[method]; ok {
		displayMethod = color + paddedMethod + ui.ResetColor
	} else {
		displayMethod = ui.Gray + paddedMethod + ui.ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}

// getScheme determines http/https, honouring a forwarding proxy.
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
