package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"portfolio-builder/internal/common/logger"
	"portfolio-builder/internal/models"
	buildportfolio "portfolio-builder/internal/workers/portfolio/build-portfolio"

	"github.com/gofiber/contrib/websocket"
)

const (
	MessageTypeState = "state"
	MessageTypeOpen  = "open"
	MessageTypePing  = "ping"
	MessageTypePong  = "pong"
)

const (
	sendBuffer   = 16
	pingInterval = 30 * time.Second
)

// Message is what the page receives over its websocket.
type Message struct {
	Type  string                  `json:"type"`
	State *models.SubmissionState `json:"state,omitempty"`
	Link  string                  `json:"link,omitempty"`
}

// Client is one websocket connection of a browser session.
type Client struct {
	SessionID string
	Send      chan []byte
}

func NewClient(sessionID string) *Client {
	return &Client{SessionID: sessionID, Send: make(chan []byte, sendBuffer)}
}

// Hub fans messages out to every connection of a session.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*Client]struct{}
	logger  logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger.Component(log, "hub"),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client.SessionID] == nil {
		h.clients[client.SessionID] = make(map[*Client]struct{})
	}
	h.clients[client.SessionID][client] = struct{}{}
}

// Unregister removes client and closes its Send channel. Unknown clients are ignored.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.clients, client.SessionID)
	}
}

// Connections returns the number of open connections of a session.
func (h *Hub) Connections(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[sessionID])
}

// Broadcast delivers msg to every connection of sessionID and returns the
// number of deliveries. A connection whose buffer is full is dropped.
func (h *Hub) Broadcast(sessionID string, msg Message) int {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal hub message", map[string]interface{}{"error": err})
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for client := range h.clients[sessionID] {
		select {
		case client.Send <- data:
			delivered++
		default:
			h.logger.Warn("dropping slow websocket client", map[string]interface{}{"sessionId": sessionID})
			h.removeLocked(client)
		}
	}
	return delivered
}

func (h *Hub) sendTo(client *Client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.SessionID][client]; !ok {
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}

func (h *Hub) BroadcastState(sessionID string, state models.SubmissionState) int {
	return h.Broadcast(sessionID, Message{Type: MessageTypeState, State: &state})
}

// Opener returns a LinkOpener that asks the session's page to open the link
// in a new tab without opener or referrer.
func (h *Hub) Opener(sessionID string) buildportfolio.LinkOpener {
	return &HubOpener{hub: h, sessionID: sessionID}
}

// HubOpener delivers the open-link effect to a browser session.
type HubOpener struct {
	hub       *Hub
	sessionID string
}

func (o *HubOpener) Open(_ context.Context, link string) error {
	if err := buildportfolio.ValidateLink(link); err != nil {
		return err
	}
	if o.hub.Broadcast(o.sessionID, Message{Type: MessageTypeOpen, Link: link}) == 0 {
		return fmt.Errorf("no open connection for session %s", o.sessionID)
	}
	return nil
}

// HandleConnection serves one websocket until it closes. initial is sent
// first so a reconnecting page catches up.
func (h *Hub) HandleConnection(c *websocket.Conn, sessionID string, initial models.SubmissionState) {
	client := NewClient(sessionID)
	h.Register(client)
	defer h.Unregister(client)

	h.sendTo(client, Message{Type: MessageTypeState, State: &initial})

	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					_ = c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}
			case <-ticker.C:
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket closed", map[string]interface{}{"sessionId": sessionID, "error": err})
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == MessageTypePing {
			h.sendTo(client, Message{Type: MessageTypePong})
		}
	}
}
