// internal/handler/analytics_handler.go

package handler

import (
	"net/http"

	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/models"
	"NetIntelAPI/internal/service"

	"github.com/gorilla/mux"
)

type AnalyticsHandler struct {
	metricService service.IMetricService
	log           *logger.Logger
}

func NewAnalyticsHandler(metricService service.IMetricService, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		metricService: metricService,
		log:           log,
	}
}

func (h *AnalyticsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/analytics/metrics", h.ListMetrics).Methods("GET")
	r.HandleFunc("/analytics/metrics", h.RecordMetric).Methods("POST")
}

func (h *AnalyticsHandler) ListMetrics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.MetricFilter{
		MetricName: q.Get("metric_name"),
		Period:     q.Get("period"),
		Limit:      queryInt(r, "limit", 100),
	}

	metrics, err := h.metricService.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.log, "list metrics", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"metrics": metrics,
		"total":   len(metrics),
	})
}

func (h *AnalyticsHandler) RecordMetric(w http.ResponseWriter, r *http.Request) {
	var in models.MetricInput
	if err := decodeJSON(r, &in); err != nil {
		if err == errEmptyBody {
			respondError(w, http.StatusBadRequest, "No metric data provided")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	metric, err := h.metricService.Record(r.Context(), in)
	if err != nil {
		respondServiceError(w, h.log, "record metric", err)
		return
	}

	respondJSON(w, http.StatusCreated, metric)
}
