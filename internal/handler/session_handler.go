package handler

import (
	"net/http"

	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/service"

	"github.com/gorilla/mux"
)

type SessionHandler struct {
	sessionService service.ISessionService
	log            *logger.Logger
}

func NewSessionHandler(sessionService service.ISessionService, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		log:            log,
	}
}

func (h *SessionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/sessions", h.Create).Methods("POST")
	r.HandleFunc("/sessions/{id}", h.Get).Methods("GET")
	r.HandleFunc("/sessions/{id}", h.Delete).Methods("DELETE")
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var data map[string]interface{}
	if err := decodeJSON(r, &data); err != nil {
		if err == errEmptyBody {
			respondError(w, http.StatusBadRequest, "No session data provided")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	session, err := h.sessionService.Create(r.Context(), data)
	if err != nil {
		respondServiceError(w, h.log, "create session", err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	session, err := h.sessionService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.log, "get session", err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	deleted := h.sessionService.Delete(r.Context(), id)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": id,
		"deleted":    deleted,
	})
}
