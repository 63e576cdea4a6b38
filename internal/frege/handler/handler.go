package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	frgerror "github.com/msto63/frege/foundation/core/error"
	"github.com/msto63/frege/internal/frege/service"
	"github.com/msto63/frege/internal/frege/store"
	"github.com/msto63/frege/pkg/core/health"
	"github.com/msto63/frege/pkg/core/logging"
)

// Handler serves the HTTP surface: health, JSON evaluation and /ws
type Handler struct {
	service   *service.Service
	ws        *WebSocketHandler
	logger    *logging.Logger
	startTime time.Time
	version   string
}

// NewHandler creates a new HTTP handler
func NewHandler(version string, svc *service.Service) *Handler {
	return &Handler{
		service:   svc,
		ws:        NewWebSocketHandler(svc),
		logger:    logging.New("frege-handler"),
		startTime: time.Now(),
		version:   version,
	}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is the body of /healthz
type HealthResponse struct {
	Status  health.Status        `json:"status"`
	Version string               `json:"version"`
	Uptime  string               `json:"uptime"`
	Checks  []health.CheckResult `json:"checks"`
}

// SourceRequest is the body of the evaluate and parse endpoints
type SourceRequest struct {
	Source  string `json:"source"`
	Session string `json:"session,omitempty"`
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Route requests
	switch path := strings.TrimPrefix(r.URL.Path, "/api/v1"); path {
	case "/ws":
		h.ws.ServeHTTP(w, r)
	case "/healthz", "/health":
		h.handleHealth(w, r)
	case "/evaluate":
		h.handleEvaluate(w, r)
	case "/parse":
		h.handleParse(w, r)
	case "/stats":
		h.writeJSON(w, http.StatusOK, h.service.Stats(r.Context()))
	default:
		if name, ok := strings.CutPrefix(path, "/sessions/"); ok && name != "" {
			h.handleEndSession(w, r, name)
			return
		}
		h.writeError(w, http.StatusNotFound, "not_found", "Endpoint not found", path)
	}
}

// handleEndSession discards a named session created through /evaluate
func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodDelete {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use DELETE", r.Method)
		return
	}
	if !h.service.EndSession(name) {
		h.writeError(w, http.StatusNotFound, "not_found", "Session not found", name)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := h.service.Health(r.Context())

	status := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, HealthResponse{
		Status:  report.Status,
		Version: h.version,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		Checks:  report.Checks,
	})
}

func (h *Handler) decodeSource(w http.ResponseWriter, r *http.Request) (*SourceRequest, bool) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST", r.Method)
		return nil, false
	}
	var req SourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "Invalid request body", err.Error())
		return nil, false
	}
	if strings.TrimSpace(req.Source) == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Source required", "")
		return nil, false
	}
	return &req, true
}

// handleEvaluate answers 200 with the response, including faults and
// syntax errors; only infrastructure failures use other status codes
func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSource(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Evaluate(r.Context(), service.EvaluateRequest{
		Source:  req.Source,
		Session: req.Session,
		Origin:  store.OriginHTTP,
	})
	if resp == nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleParse(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSource(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Parse(r.Context(), req.Source)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch code := frgerror.GetCode(err); code {
	case frgerror.CodeInvalidInput:
		status = http.StatusBadRequest
	case frgerror.CodeServiceUnavailable:
		status = http.StatusServiceUnavailable
	}
	h.logger.Warn("request failed", "error", err)
	h.writeError(w, status, string(frgerror.GetCode(err)), err.Error(), "")
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	h.writeJSON(w, status, resp)
}
