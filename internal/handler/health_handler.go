package handler

import (
	"context"
	"net/http"
	"time"

	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/service"

	"github.com/gorilla/mux"
)

type HealthHandler struct {
	healthService *service.HealthService
	log           *logger.Logger
}

func NewHealthHandler(healthService *service.HealthService, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
		log:           log,
	}
}

func (h *HealthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/health/live", h.Liveness).Methods("GET")
	r.HandleFunc("/health/ready", h.Readiness).Methods("GET")
}

// Health always answers 200; degraded dependencies show up in services.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := h.healthService.Check(ctx)
	if !response.Services.Redis || !response.Services.Database {
		h.log.Debug("Health check - Redis: %v, Database: %v", response.Services.Redis, response.Services.Database)
	}

	respondJSON(w, http.StatusOK, response)
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "alive",
	})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	ready, detail := h.healthService.Ready(ctx)
	if !ready {
		h.log.Warn("Readiness check failed: %v", detail)
		detail["status"] = "not ready"
		respondJSON(w, http.StatusServiceUnavailable, detail)
		return
	}

	detail["status"] = "ready"
	respondJSON(w, http.StatusOK, detail)
}
