package handler

import (
	"net/http"

	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/service"

	"github.com/gorilla/mux"
)

type InferenceHandler struct {
	inferenceService service.IInferenceService
	log              *logger.Logger
}

func NewInferenceHandler(inferenceService service.IInferenceService, log *logger.Logger) *InferenceHandler {
	return &InferenceHandler{
		inferenceService: inferenceService,
		log:              log,
	}
}

func (h *InferenceHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ai-inference", h.Infer).Methods("POST")
	r.HandleFunc("/ai-inference/batch", h.Batch).Methods("POST")
	r.HandleFunc("/ai-inference/models", h.Models).Methods("GET")
	r.HandleFunc("/ai-inference/history", h.History).Methods("GET")
}

func (h *InferenceHandler) Infer(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := decodeJSON(r, &body); err != nil {
		if err == errEmptyBody {
			respondError(w, http.StatusBadRequest, "No data provided")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	inferenceType, _ := body["type"].(string)
	respondJSON(w, http.StatusOK, h.inferenceService.Infer(r.Context(), inferenceType))
}

func (h *InferenceHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Requests []map[string]interface{} `json:"requests"`
	}
	if err := decodeJSON(r, &body); err != nil && err != errEmptyBody {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(body.Requests) == 0 {
		respondError(w, http.StatusBadRequest, "No batch requests provided")
		return
	}

	respondJSON(w, http.StatusOK, h.inferenceService.Batch(body.Requests))
}

func (h *InferenceHandler) Models(w http.ResponseWriter, r *http.Request) {
	catalogue := h.inferenceService.Models()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"models": catalogue,
		"total":  len(catalogue),
	})
}

func (h *InferenceHandler) History(w http.ResponseWriter, r *http.Request) {
	inferenceType := r.URL.Query().Get("type")
	limit := queryInt(r, "limit", 10)

	history := h.inferenceService.History(r.Context(), inferenceType, limit)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"history": history,
		"total":   len(history),
	})
}
