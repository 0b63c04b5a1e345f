package handler

import (
	"errors"
	"net/http"

	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/models"
	"NetIntelAPI/internal/service"

	"github.com/gorilla/mux"
)

type NetworkHandler struct {
	trafficService service.ITrafficService
	log            *logger.Logger
}

func NewNetworkHandler(trafficService service.ITrafficService, log *logger.Logger) *NetworkHandler {
	return &NetworkHandler{
		trafficService: trafficService,
		log:            log,
	}
}

func (h *NetworkHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/network/status", h.Status).Methods("GET")
	r.HandleFunc("/network/analyze", h.Analyze).Methods("POST")
	r.HandleFunc("/network/analysis-history", h.History).Methods("GET")
	r.HandleFunc("/network/analyze-suggestions", h.Suggestions).Methods("GET")
}

func (h *NetworkHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.trafficService.Status(r.Context()))
}

// Analyze scores a traffic sample. An empty body is a sample with no
// signals and scores zero.
func (h *NetworkHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var traffic models.TrafficData
	if err := decodeJSON(r, &traffic); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.trafficService.Analyze(r.Context(), &traffic)
	if err != nil {
		respondServiceError(w, h.log, "analyze traffic", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *NetworkHandler) History(w http.ResponseWriter, r *http.Request) {
	page, err := h.trafficService.History(
		r.Context(),
		queryInt(r, "limit", 20),
		queryInt(r, "offset", 0),
		r.URL.Query().Get("source_ip"),
	)
	if err != nil {
		respondServiceError(w, h.log, "load analysis history", err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

func (h *NetworkHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	suggestions := h.trafficService.Suggestions()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"total":       len(suggestions),
	})
}
