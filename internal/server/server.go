// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"

	"NetIntelAPI/internal/cache"
	"NetIntelAPI/internal/config"
	"NetIntelAPI/internal/handler"
	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/metrics"
	"NetIntelAPI/internal/middleware"
	"NetIntelAPI/internal/websocket"

	"github.com/gorilla/mux"
)

// RouteRegistrar is implemented by every handler in internal/handler.
type RouteRegistrar interface {
	RegisterRoutes(r *mux.Router)
}

type Server struct {
	httpServer *http.Server
	router     *mux.Router
	api        *mux.Router
	cfg        *config.Config
	log        *logger.Logger
}

// New builds the router and its middleware chain. m and c may be nil.
func New(cfg *config.Config, m *metrics.Metrics, c *cache.Cache, log *logger.Logger) *Server {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(handler.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(handler.MethodNotAllowed)

	// Subrouter routes inherit the /api prefix matcher, and mux clears a method
	// mismatch whenever a later route's prefix matches. Recover the 405 here.
	api := router.PathPrefix("/api").Subrouter()
	api.MethodNotAllowedHandler = http.HandlerFunc(handler.MethodNotAllowed)
	api.NotFoundHandler = handler.NotFoundFor(api)

	server := &Server{
		router: router,
		api:    api,
		cfg:    cfg,
		log:    log,
	}

	if cfg.Security.EnableRateLimit {
		api.Use(middleware.RateLimit(c, cfg.Security.RateLimitPerMinute, cfg.Security.TrustedProxies))
	}

	// CORS sits outside the router so preflight requests for any path are answered.
	var chain http.Handler = router
	if m != nil {
		router.Use(middleware.RouteLabel)
		router.Handle("/metrics", m.Handler()).Methods("GET")
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.CORS(cfg.Security.CORSAllowedOrigins, cfg.Security.CORSAllowedMethods)(chain)
	chain = middleware.RequestLogger(log)(chain)
	chain = middleware.Recovery(log)(chain)

	server.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        chain,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return server
}

// RegisterHandlers mounts every handler under /api. A nil hub leaves /api/ws unrouted.
func (s *Server) RegisterHandlers(hub *websocket.Hub, handlers ...RouteRegistrar) {
	for _, h := range handlers {
		h.RegisterRoutes(s.api)
	}

	if hub != nil {
		s.api.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
			websocket.ServeWs(hub, w, r, s.log)
		}).Methods("GET")
	}

	s.log.Info("All handlers registered")
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.log.Info("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}
