package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/franckalain/nutrisnap/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// maxInFlight bounds concurrent analyses per websocket connection. Further
// analyze messages are refused until one finishes.
const maxInFlight = 2

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// wsClient serializes writes; gorilla allows one concurrent writer.
type wsClient struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.maxUpload * 2)

	client := &wsClient{id: uuid.NewString(), conn: conn}
	s.clients.Store(client.id, client)
	defer s.clients.Delete(client.id)
	slog.Debug("WebSocket client connected", "client", client.id)

	// Hijacked connections outlive r.Context(), so analyses get their own
	// context that ends with the read loop.
	ctx, cancel := context.WithCancel(r.Context())
	var g errgroup.Group
	g.SetLimit(maxInFlight)
	defer func() {
		cancel()
		g.Wait()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("Error reading message", "client", client.id, "err", err)
			}
			break
		}

		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.sendError("Invalid message format", "input")
			continue
		}

		switch msg.Type {
		case "analyze":
			data := msg.Data
			started := g.TryGo(func() error {
				s.handleAnalyzeMessage(ctx, client, data)
				return nil
			})
			if !started {
				client.sendError("Too many analyses in progress", "input")
			}
		case "ping":
			client.sendMessage("pong", nil)
		default:
			client.sendError("Unknown message type", "input")
		}
	}
}

func (s *Server) handleAnalyzeMessage(ctx context.Context, client *wsClient, data json.RawMessage) {
	var req analyzeRequest
	if err := json.Unmarshal(data, &req); err != nil || strings.TrimSpace(req.Image) == "" {
		client.sendError("Invalid image data", "input")
		return
	}

	image, err := models.DecodeImagePayload(req.Image, req.MIMEType)
	if err != nil {
		client.sendError("Invalid image format", "input")
		return
	}

	result, err := s.perform(ctx, image)
	if ctx.Err() != nil {
		slog.Debug("Analysis abandoned", "client", client.id)
		return
	}
	if err != nil {
		_, kind := statusFor(err)
		slog.Warn("Analysis failed", "client", client.id, "kind", kind, "err", err)
		client.sendError(err.Error(), kind)
		return
	}
	client.sendMessage("analysis_result", result)
}

func (c *wsClient) sendMessage(messageType string, data any) {
	msg := map[string]any{
		"type": messageType,
		"data": data,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteJSON(msg); err != nil {
		slog.Warn("Error sending message", "client", c.id, "type", messageType, "err", err)
	}
}

func (c *wsClient) sendError(message, kind string) {
	msg := map[string]any{
		"type":    "error",
		"message": message,
		"kind":    kind,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteJSON(msg); err != nil {
		slog.Warn("Error sending error message", "client", c.id, "err", err)
	}
}

// close may run concurrently with reads and writes.
func (c *wsClient) close() {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	if err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		slog.Debug("Error sending close message", "client", c.id, "err", err)
	}
	c.conn.Close()
}
