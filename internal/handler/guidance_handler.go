package handler

import (
	"net/http"

	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/models"
	"NetIntelAPI/internal/service"

	"github.com/gorilla/mux"
)

type GuidanceHandler struct {
	guidanceService service.IGuidanceService
	log             *logger.Logger
}

func NewGuidanceHandler(guidanceService service.IGuidanceService, log *logger.Logger) *GuidanceHandler {
	return &GuidanceHandler{
		guidanceService: guidanceService,
		log:             log,
	}
}

func (h *GuidanceHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/guidance/generate", h.Generate).Methods("POST")
	r.HandleFunc("/guidance/similar", h.Similar).Methods("POST")
	r.HandleFunc("/guidance/history", h.History).Methods("GET")
}

func (h *GuidanceHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var in models.GuidanceInput
	if err := decodeJSON(r, &in); err != nil {
		if err == errEmptyBody {
			respondError(w, http.StatusBadRequest, "No analysis data provided")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.guidanceService.Generate(r.Context(), in)
	if err != nil {
		respondServiceError(w, h.log, "generate guidance", err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *GuidanceHandler) Similar(w http.ResponseWriter, r *http.Request) {
	var req models.SimilarGuidanceRequest
	if err := decodeJSON(r, &req); err != nil && err != errEmptyBody {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	matches, err := h.guidanceService.Similar(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.log, "find similar guidance", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"results": matches,
		"total":   len(matches),
	})
}

func (h *GuidanceHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	sourceIP := r.URL.Query().Get("source_ip")

	history, err := h.guidanceService.History(r.Context(), limit, sourceIP)
	if err != nil {
		respondServiceError(w, h.log, "read guidance history", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"history": history,
		"total":   len(history),
	})
}
