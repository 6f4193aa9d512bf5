package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goncalofm90/foodi3/internal/core/domain"
	core_port "github.com/goncalofm90/foodi3/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	// SearchRateLimit is the number of content requests allowed per IP per minute.
	SearchRateLimit int
}

// Handlers groups everything the router mounts.
type Handlers struct {
	Favourites *FavouritesHandler
	Content    *ContentHandler
	Users      *UserHandler
	Auth       *Authenticator
	// Metrics is optional; nil disables /metrics and request histograms.
	Metrics MetricsExporter
}

// MetricsExporter is satisfied by *metrics.PrometheusMetrics.
type MetricsExporter interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

// NewRouter builds the chi router; exported for tests.
func NewRouter(cfg ServerConfig, h Handlers, baseLogger core_port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(baseLogger))
	r.Use(middleware.Recoverer)
	if h.Metrics != nil {
		r.Use(h.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", TraceIDHeader},
		ExposedHeaders:   []string{TraceIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())
	}

	limit := cfg.SearchRateLimit
	if limit <= 0 {
		limit = 120
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(limit, time.Minute))
			r.Use(h.Auth.OptionalAuth)

			r.Get("/dishes", h.Content.Search(domain.ItemKindDish))
			r.Get("/dishes/{id}", h.Content.GetDetails(domain.ItemKindDish))
			r.Get("/cocktails", h.Content.Search(domain.ItemKindCocktail))
			r.Get("/cocktails/{id}", h.Content.GetDetails(domain.ItemKindCocktail))
		})

		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuth)

			r.Post("/users/register", h.Users.RegisterUser)
			r.Post("/session/signout", h.Users.SignOut)

			r.Route("/favourites", func(r chi.Router) {
				r.Get("/", h.Favourites.GetUserFavourites)
				r.Post("/", h.Favourites.AddFavourite)
				r.Post("/load", h.Favourites.LoadFavourites)
				r.Post("/toggle", h.Favourites.ToggleFavourite)
				r.Get("/snapshot", h.Favourites.GetSnapshot)
				r.Get("/subscribe", h.Favourites.Subscribe)
				r.Delete("/{itemID}", h.Favourites.RemoveFavourite)
			})
		})
	})

	return r
}

func NewServer(cfg ServerConfig, h Handlers, baseLogger core_port.LoggerPort) *Server {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(cfg, h, baseLogger),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     baseLogger.WithFields(core_port.Fields{"component": "rest_server"}),
	}
}

// Start blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", core_port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
