package handler

import (
	"net/http"

	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/models"
	"NetIntelAPI/internal/service"

	"github.com/gorilla/mux"
)

type ThreatHandler struct {
	indicatorService service.IIndicatorService
	log              *logger.Logger
}

func NewThreatHandler(indicatorService service.IIndicatorService, log *logger.Logger) *ThreatHandler {
	return &ThreatHandler{
		indicatorService: indicatorService,
		log:              log,
	}
}

func (h *ThreatHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/threats/indicators", h.List).Methods("GET")
	r.HandleFunc("/threats/indicators", h.Add).Methods("POST")
	r.HandleFunc("/threats/check/{value}", h.Check).Methods("GET")
}

func (h *ThreatHandler) List(w http.ResponseWriter, r *http.Request) {
	indicators := h.indicatorService.List(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"indicators": indicators,
		"total":      len(indicators),
	})
}

func (h *ThreatHandler) Add(w http.ResponseWriter, r *http.Request) {
	var in models.IndicatorInput
	if err := decodeJSON(r, &in); err != nil && err != errEmptyBody {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	indicator, err := h.indicatorService.Add(r.Context(), in)
	if err != nil {
		respondServiceError(w, h.log, "add indicator", err)
		return
	}

	respondJSON(w, http.StatusCreated, indicator)
}

func (h *ThreatHandler) Check(w http.ResponseWriter, r *http.Request) {
	value := mux.Vars(r)["value"]

	check, err := h.indicatorService.Check(r.Context(), value)
	if err != nil {
		respondServiceError(w, h.log, "check indicator", err)
		return
	}

	respondJSON(w, http.StatusOK, check)
}
