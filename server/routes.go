package server

import "net/http"

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /{$}", ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleware()...))

	// LOGIN
	s.RegisterRouteFunc("POST "+RouteLogin, ChainMiddleware(s.CodeSubmissionHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteTokenLogin, ChainMiddleware(s.TokenSubmissionHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleware()...))

	// TIMELINES (session-guarded)
	s.RegisterRouteFunc("GET "+RouteHome, ChainMiddleware(s.TimelineHandler("home"), s.HTMLMiddleware(s.RequireSession())...))
	s.RegisterRouteFunc("GET "+RouteLocal, ChainMiddleware(s.TimelineHandler("local"), s.HTMLMiddleware(s.RequireSession())...))
	s.RegisterRouteFunc("GET "+RoutePublic, ChainMiddleware(s.TimelineHandler("public"), s.HTMLMiddleware(s.RequireSession())...))

	// Incremental loading for the e-ink friendly "more posts" button
	s.RegisterRouteFunc("GET "+RouteTimelineMore, ChainMiddleware(s.TimelineMoreHandler(), s.APIMiddleware()...))

	s.RegisterRouteFunc("GET "+RouteStatic, s.CompressionMiddleware(http.StripPrefix(RouteStatic, s.fileServer).ServeHTTP))
}
