package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jrsteele09/go-notes-server/internal/metrics"
)

func (s *Server) initRoutes() {
	s.router.Use(middleware.RequestID, s.RecoverMiddleware, s.LoggingMiddleware, s.CorsMiddleware)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
		s.router.Method(http.MethodGet, RouteMetrics, metrics.Handler(s.gatherer))
		s.routes = append(s.routes, "GET "+RouteMetrics)
	}

	for _, version := range []string{RouteAPIv1, RouteAPIv2} {
		s.router.Route(version, func(r chi.Router) {
			s.registerAccountRoutes(r, version)
			s.registerNoteRoutes(r, version)
			s.registerCommonRoutes(r, version)
		})
	}

	if s.services.GraphQL != nil {
		// the handler answers unsupported methods itself
		s.router.Handle(RouteGraphQL, s.services.GraphQL)
		s.routes = append(s.routes, "POST "+RouteGraphQL)
	}

	s.handleFunc(s.router, "", "GET", RouteWSEcho, s.EchoSocket())
	s.handleFunc(s.router, "", "GET", RouteWSRoom, s.RoomSocket())
	s.handleFunc(s.router, "", "GET", RouteWSNotes, s.NotesSocket())

	if s.mediaFolder != "" {
		files := http.StripPrefix(RouteFiles, http.FileServer(http.Dir(s.mediaFolder)))
		s.router.Handle(RouteFiles+"*", files)
		s.routes = append(s.routes, "GET "+RouteFiles+"*")
	}
}

func (s *Server) handle(r chi.Router, prefix, method, pattern string, handler http.Handler) {
	s.routes = append(s.routes, method+" "+prefix+pattern)
	r.Method(method, pattern, handler)
}

func (s *Server) handleFunc(r chi.Router, prefix, method, pattern string, handler http.HandlerFunc) {
	s.handle(r, prefix, method, pattern, handler)
}
