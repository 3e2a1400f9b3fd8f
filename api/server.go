package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"gamehub/tokens"
	"gamehub/util"
	"gamehub/ws"
)

type Server struct {
	config     *util.Config
	logger     *zap.Logger
	router     chi.Router
	managers   []*ws.Manager
	tokenMaker tokens.Maker
}

func NewServer(config *util.Config, logger *zap.Logger, maker tokens.Maker, managers []*ws.Manager) *Server {
	s := &Server{
		config:     config,
		logger:     logger.Named("api"),
		managers:   managers,
		tokenMaker: maker,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	// the HTML clients may be hosted anywhere
	r.Use(cors.AllowAll().Handler)

	r.Get("/health", s.Health)
	r.Get("/rooms", s.ListRooms)
	r.Post("/auth/username", s.TokenGenerator)
	r.Handle("/metrics", promhttp.Handler())

	for _, m := range managers {
		r.Get("/ws/"+m.GameName(), m.ServeWS)
	}

	r.Handle("/*", http.FileServer(http.Dir(config.StaticDir)))

	s.router = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("http listen", zap.String("port", s.config.Port))
	return http.ListenAndServe(":"+s.config.Port, s.router)
}
