package server

const (
	RouteIndex        = "/"
	RouteLogin        = "/login"
	RouteTokenLogin   = "/login/token"
	RouteLogout       = "/logout"
	RouteHome         = "/home"
	RouteLocal        = "/local"
	RoutePublic       = "/public"
	RouteTimelineMore = "/api/timeline/{view}/more"
	RouteStatic       = "/static/"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json"
)
