package handler

import (
	"net/http"

	"NetIntelAPI/internal/cache"
	"NetIntelAPI/internal/logger"

	"github.com/gorilla/mux"
)

type CacheHandler struct {
	cache *cache.Cache
	log   *logger.Logger
}

// NewCacheHandler accepts a nil cache; stats are then empty and clears fail.
func NewCacheHandler(c *cache.Cache, log *logger.Logger) *CacheHandler {
	return &CacheHandler{
		cache: c,
		log:   log,
	}
}

func (h *CacheHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/cache/stats", h.Stats).Methods("GET")
	r.HandleFunc("/cache/clear", h.Clear).Methods("POST")
}

func (h *CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cache.Stats(r.Context()))
}

func (h *CacheHandler) Clear(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Pattern string `json:"pattern"`
	}
	if err := decodeJSON(r, &body); err != nil && err != errEmptyBody {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if body.Pattern == "" {
		body.Pattern = "*"
	}

	ok := h.cache.Clear(r.Context(), body.Pattern)
	if ok {
		h.log.Info("Cleared cache keys matching %s", body.Pattern)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": ok,
		"pattern": body.Pattern,
	})
}
