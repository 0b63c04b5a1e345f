package handler

import (
	"net/http"

	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/models"
	"NetIntelAPI/internal/service"

	"github.com/gorilla/mux"
)

type EventHandler struct {
	eventService service.IEventService
	log          *logger.Logger
}

func NewEventHandler(eventService service.IEventService, log *logger.Logger) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		log:          log,
	}
}

func (h *EventHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/events", h.List).Methods("GET")
	r.HandleFunc("/events", h.Create).Methods("POST")
	r.HandleFunc("/events/live", h.Live).Methods("GET")
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.EventFilter{
		Severity:  q.Get("severity"),
		SourceIP:  q.Get("source_ip"),
		EventType: q.Get("event_type"),
		Status:    q.Get("status"),
		Limit:     queryInt(r, "limit", 10),
		Offset:    queryInt(r, "offset", 0),
	}

	events, err := h.eventService.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.log, "list events", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"total":  len(events),
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var event models.SecurityEvent
	if err := decodeJSON(r, &event); err != nil {
		if err == errEmptyBody {
			respondError(w, http.StatusBadRequest, "No event data provided")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	created, err := h.eventService.Create(r.Context(), &event)
	if err != nil {
		respondServiceError(w, h.log, "create event", err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

func (h *EventHandler) Live(w http.ResponseWriter, r *http.Request) {
	events := h.eventService.Live(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"total":  len(events),
	})
}
