package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"NetIntelAPI/internal/embedding"
	"NetIntelAPI/internal/guidance"
	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/provider"
	"NetIntelAPI/internal/service"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("empty body")

type ErrorResponse struct {
	Error string `json:"error"`
}

type ProviderErrorResponse struct {
	Error          string `json:"error"`
	Provider       string `json:"provider"`
	ProviderStatus int    `json:"provider_status"`
}

func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		return
	}
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondServiceError maps a service failure onto the HTTP taxonomy. Only
// validation messages reach the client verbatim; everything else is logged.
func respondServiceError(w http.ResponseWriter, log *logger.Logger, action string, err error) {
	var verr *service.ValidationError
	var perr *provider.Error

	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrInvalidStatus):
		respondError(w, http.StatusBadRequest, "Invalid status")
	case errors.Is(err, service.ErrInvalidTransition):
		respondError(w, http.StatusBadRequest, "Invalid status transition")
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, notFoundMessage(action))
	case errors.Is(err, service.ErrStoreUnavailable):
		respondError(w, http.StatusServiceUnavailable, "Database not available")
	case errors.Is(err, service.ErrEmbedderUnavailable), errors.Is(err, embedding.ErrNotConfigured):
		respondError(w, http.StatusServiceUnavailable, "Embedding service not available")
	case errors.Is(err, service.ErrAdvisorUnavailable), errors.Is(err, guidance.ErrNotConfigured):
		respondError(w, http.StatusServiceUnavailable, "Guidance service not available")
	case errors.As(err, &perr):
		log.Error("Failed to %s: %v", action, err)
		respondJSON(w, http.StatusInternalServerError, ProviderErrorResponse{
			Error:          "External provider request failed",
			Provider:       perr.Provider,
			ProviderStatus: perr.StatusCode,
		})
	default:
		log.Error("Failed to %s: %v", action, err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

var notFoundMessages = map[string]string{
	"update alert":    "Alert not found",
	"get session":     "Session not found",
	"check indicator": "Indicator not found",
}

func notFoundMessage(action string) string {
	if msg, ok := notFoundMessages[action]; ok {
		return msg
	}
	return "Not found"
}

// decodeJSON reads a JSON body into dst. An absent body yields errEmptyBody
// so callers can decide whether that is acceptable.
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errEmptyBody
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || string(body) == "null" {
		return errEmptyBody
	}
	return json.Unmarshal(body, dst)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "Endpoint not found")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

var errRouteFound = errors.New("route found")

// NotFoundFor is the NotFoundHandler for a subrouter. It answers 405 when the
// path is routed under r for a different method, since mux loses that
// mismatch once a later sibling route's inherited prefix matcher succeeds.
func NotFoundFor(r *mux.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if routedForOtherMethod(r, req) {
			MethodNotAllowed(w, req)
			return
		}
		NotFound(w, req)
	}
}

func routedForOtherMethod(r *mux.Router, req *http.Request) bool {
	err := r.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		methods, err := route.GetMethods()
		if err != nil {
			return nil
		}
		for _, method := range methods {
			if method == req.Method {
				continue
			}
			alt := req.Clone(req.Context())
			alt.Method = method
			var match mux.RouteMatch
			if route.Match(alt, &match) {
				return errRouteFound
			}
		}
		return nil
	})
	return errors.Is(err, errRouteFound)
}
