package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/msto63/frege/foundation/lang/diagnostics"
	"github.com/msto63/frege/internal/frege/service"
	"github.com/msto63/frege/internal/frege/store"
	"github.com/msto63/frege/pkg/core/logging"
)

// WebSocket upgrader with permissive settings for local development
var upgrader = websocket.Upgrader{
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
	HandshakeTimeout: 10 * time.Second, // also clears the server's write deadline
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

const readTimeout = 120 * time.Second

// WebSocketHandler runs one evaluation session per connection
type WebSocketHandler struct {
	service *service.Service
	logger  *logging.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(svc *service.Service) *WebSocketHandler {
	return &WebSocketHandler{
		service: svc,
		logger:  logging.New("frege-websocket"),
	}
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string          `json:"type"`    // "eval", "reset", "vars", "ping"
	Payload json.RawMessage `json:"payload"` // Message-specific payload
}

// WSEvalPayload is the payload of an eval message
type WSEvalPayload struct {
	Source string `json:"source"`
}

// WSResponse represents a WebSocket response
type WSResponse struct {
	Type    string      `json:"type"`    // "session", "result", "error", "reset", "vars", "pong"
	Payload interface{} `json:"payload"` // Response-specific payload
}

// WSSessionPayload announces the session of a new connection
type WSSessionPayload struct {
	Session string `json:"session"`
}

// WSVarsPayload lists the session state. Values are formatted like results
// since JSON has no Inf or NaN.
type WSVarsPayload struct {
	Variables map[string]string `json:"variables"`
	Functions []string           `json:"functions"`
}

// WSErrorPayload represents an error payload
type WSErrorPayload struct {
	Code        string                   `json:"code"`
	Message     string                   `json:"message"`
	RunID       string                   `json:"run_id,omitempty"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics,omitempty"`
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	h.handleConnection(conn)
}

// handleConnection handles a single WebSocket connection. Messages are
// processed in order; the session belongs to the connection.
func (h *WebSocketHandler) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	eng := h.service.NewSession()
	h.logger.Info("WebSocket connection established", "remote", conn.RemoteAddr().String(), "session", eng.Session())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set read deadline for ping/pong
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	h.sendResponse(conn, WSResponse{Type: "session", Payload: WSSessionPayload{Session: eng.Session()}})

	// Read messages in a loop
	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Error("WebSocket read error", "error", err)
			} else {
				h.logger.Info("WebSocket connection closed", "session", eng.Session())
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		switch msg.Type {
		case "ping":
			h.sendResponse(conn, WSResponse{Type: "pong", Payload: nil})

		case "eval":
			var payload WSEvalPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				h.sendError(conn, WSErrorPayload{Code: "invalid_payload", Message: "Invalid eval payload"})
				continue
			}
			if strings.TrimSpace(payload.Source) == "" {
				h.sendError(conn, WSErrorPayload{Code: "invalid_request", Message: "Source required"})
				continue
			}

			resp, err := h.service.EvaluateIn(ctx, eng, payload.Source, store.OriginWebSocket)
			if err != nil {
				h.sendError(conn, WSErrorPayload{
					Code:        resp.ErrorCode,
					Message:     resp.Error,
					RunID:       resp.RunID,
					Diagnostics: resp.Diagnostics,
				})
				continue
			}
			h.sendResponse(conn, WSResponse{Type: "result", Payload: resp})

		case "reset":
			eng.Reset()
			h.sendResponse(conn, WSResponse{Type: "reset", Payload: WSSessionPayload{Session: eng.Session()}})

		case "vars":
			h.sendResponse(conn, WSResponse{Type: "vars", Payload: WSVarsPayload{
				Variables: formatVariables(eng.Variables()),
				Functions: eng.Functions(),
			}})

		default:
			h.sendError(conn, WSErrorPayload{Code: "unknown_type", Message: "Unknown message type: " + msg.Type})
		}
	}
}

func formatVariables(vars map[string]float64) map[string]string {
	out := make(map[string]string, len(vars))
	for name, v := range vars {
		out[name] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return out
}

// sendResponse sends a response message via WebSocket
func (h *WebSocketHandler) sendResponse(conn *websocket.Conn, resp WSResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		h.logger.Error("WebSocket send error", "error", err)
	}
}

// sendError sends an error response via WebSocket
func (h *WebSocketHandler) sendError(conn *websocket.Conn, payload WSErrorPayload) {
	h.sendResponse(conn, WSResponse{Type: "error", Payload: payload})
}
