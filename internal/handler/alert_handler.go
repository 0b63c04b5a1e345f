package handler

import (
	"net/http"
	"strconv"

	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/models"
	"NetIntelAPI/internal/service"

	"github.com/gorilla/mux"
)

type AlertHandler struct {
	alertService service.IAlertService
	log          *logger.Logger
}

func NewAlertHandler(alertService service.IAlertService, log *logger.Logger) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
		log:          log,
	}
}

func (h *AlertHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/alerts", h.List).Methods("GET")
	r.HandleFunc("/alerts", h.Create).Methods("POST")
	r.HandleFunc("/alerts/{id}", h.UpdateStatus).Methods("PUT")
}

func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = "all"
	}

	alerts, err := h.alertService.List(status)
	if err != nil {
		respondServiceError(w, h.log, "list alerts", err)
		return
	}

	respondJSON(w, http.StatusOK, alerts)
}

func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.AlertInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid alert data")
		return
	}
	if in.Severity != "" && !models.ValidSeverity(in.Severity) {
		respondError(w, http.StatusBadRequest, "Invalid severity")
		return
	}

	alert := h.alertService.Raise(r.Context(), in)
	respondJSON(w, http.StatusCreated, alert)
}

func (h *AlertHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idStr := vars["id"]

	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid alert ID")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	alert, err := h.alertService.UpdateStatus(id, body.Status)
	if err != nil {
		respondServiceError(w, h.log, "update alert", err)
		return
	}

	respondJSON(w, http.StatusOK, alert)
}
