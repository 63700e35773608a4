package server

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-notes-server/accounts"
	"github.com/jrsteele09/go-notes-server/auth"
	"github.com/jrsteele09/go-notes-server/common"
	"github.com/jrsteele09/go-notes-server/internal/config"
	"github.com/jrsteele09/go-notes-server/internal/metrics"
	"github.com/jrsteele09/go-notes-server/pagination"
	"github.com/jrsteele09/go-notes-server/users"
	"github.com/prometheus/client_golang/prometheus"
)

// Services are the application services the surfaces are built on.
type Services struct {
	Users    users.UserRepo
	Accounts *accounts.Service
	Common   *common.Service
	Authn    *auth.Authenticator
	GraphQL  http.Handler
}

type Server struct {
	env      string
	router   chi.Router
	routes   []string
	config   config.Config
	services Services
	pages    *pagination.Engine
	rooms    *roomHub

	metrics     *metrics.Collector
	gatherer    prometheus.Gatherer
	mediaFolder string
}

type Option func(*Server)

// WithMetrics records HTTP and WebSocket traffic and serves /metrics from gatherer.
func WithMetrics(collector *metrics.Collector, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = collector
		s.gatherer = gatherer
	}
}

// WithMediaFolder serves uploaded files from folder under /files/.
func WithMediaFolder(folder string) Option {
	return func(s *Server) {
		s.mediaFolder = folder
	}
}

func New(c config.Config, services Services, options ...Option) *Server {
	s := &Server{
		env:      c.GetEnv(),
		router:   chi.NewRouter(),
		config:   c,
		services: services,
		pages:    pagination.NewEngine(pagination.WithMaxLimit(c.GetMaxPageSize())),
		rooms:    newRoomHub(),
	}
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
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
	log.Printf("[%s] %s\n", colourMethod(method), path)
}
