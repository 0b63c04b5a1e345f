package handler

import (
	"net/http"

	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/models"
	"NetIntelAPI/internal/service"

	"github.com/gorilla/mux"
)

type EmbeddingHandler struct {
	embeddingService service.IEmbeddingService
	log              *logger.Logger
}

func NewEmbeddingHandler(embeddingService service.IEmbeddingService, log *logger.Logger) *EmbeddingHandler {
	return &EmbeddingHandler{
		embeddingService: embeddingService,
		log:              log,
	}
}

func (h *EmbeddingHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/embeddings/generate", h.Generate).Methods("POST")
	r.HandleFunc("/embeddings/search", h.Search).Methods("POST")
	r.HandleFunc("/embeddings/analyze", h.Analyze).Methods("POST")
	r.HandleFunc("/embeddings/stats", h.Stats).Methods("GET")
}

func (h *EmbeddingHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type string                 `json:"type"`
		Data map[string]interface{} `json:"data"`
	}
	if err := decodeJSON(r, &body); err != nil {
		if err == errEmptyBody {
			respondError(w, http.StatusBadRequest, "No data provided")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	record, err := h.embeddingService.Generate(r.Context(), body.Type, body.Data)
	if err != nil {
		respondServiceError(w, h.log, "generate embedding", err)
		return
	}

	respondJSON(w, http.StatusCreated, record)
}

func (h *EmbeddingHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		if err == errEmptyBody {
			respondError(w, http.StatusBadRequest, "Missing required field: query")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.embeddingService.Search(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.log, "search embeddings", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *EmbeddingHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var traffic models.TrafficData
	if err := decodeJSON(r, &traffic); err != nil {
		if err == errEmptyBody {
			respondError(w, http.StatusBadRequest, "No traffic data provided")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.embeddingService.Analyze(r.Context(), &traffic)
	if err != nil {
		respondServiceError(w, h.log, "analyze traffic embedding", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *EmbeddingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.embeddingService.Stats(r.Context())
	if err != nil {
		respondServiceError(w, h.log, "read embedding stats", err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
