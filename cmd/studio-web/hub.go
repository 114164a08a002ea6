package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Bakhtawar-pk/Visionary-Studio/internal/studio"
)

// sendBuffer bounds how far a client may fall behind before it is dropped.
const sendBuffer = 64

// event is the envelope for every push message sent to the browser.
type event struct {
	Type     string         `json:"type"`
	Result   *studio.Result `json:"result,omitempty"`
	Elevated *bool          `json:"elevated,omitempty"`
	Message  string         `json:"message,omitempty"`
}

// client is one connected browser. All writes to the connection go through
// the send channel and the single writePump goroutine; gorilla/websocket
// allows at most one concurrent writer per connection.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// writePump is the sole writer for the connection. It exits when the send
// channel is closed or a write fails.
func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debug().Err(err).Msg("WebSocket write failed")
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// hub fans state snapshots out to every connected browser over WebSocket.
// It implements studio.Publisher and doubles as the web surface for the
// authorization-selection interaction: RequestKeySelection pushes a
// select_key event that the frontend turns into the key dialog.
//
// Publishers run concurrently (the generation goroutine and access refreshes
// interleave), so broadcast only enqueues; each connection is written by its
// own writePump.
type hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]bool
}

func newHub() *hub {
	return &hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" ||
					strings.HasPrefix(origin, "http://localhost:") ||
					strings.HasPrefix(origin, "http://127.0.0.1:")
			},
		},
		clients: make(map[*client]bool),
	}
}

// handleWS upgrades the connection and keeps it registered until the client
// goes away. Clients never send meaningful frames; the read loop exists to
// notice closure.
func (h *hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = true
	count := len(h.clients)
	h.mu.Unlock()
	log.Debug().Int("clients", count).Msg("WebSocket client connected")

	go c.writePump()
	go func() {
		defer h.drop(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debug().Err(err).Msg("WebSocket client read error")
				}
				return
			}
		}
	}()
}

// drop unregisters the client. Closing the send channel stops its writePump,
// which closes the connection. Safe to call more than once.
func (h *hub) drop(c *client) {
	h.mu.Lock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()
	log.Debug().Int("clients", count).Msg("WebSocket client disconnected")
}

// broadcast enqueues one event for every connected client. A client whose
// send buffer is full is dropped rather than blocking the publisher.
func (h *hub) broadcast(ev event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			log.Warn().Msg("Dropping unresponsive WebSocket client")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// PublishResult implements studio.Publisher.
func (h *hub) PublishResult(result studio.Result) {
	h.broadcast(event{Type: "result", Result: &result})
}

// PublishAccess implements studio.Publisher.
func (h *hub) PublishAccess(elevated bool) {
	h.broadcast(event{Type: "access", Elevated: &elevated})
}

// Notify implements studio.Publisher.
func (h *hub) Notify(message string) {
	h.broadcast(event{Type: "notice", Message: message})
}

// RequestKeySelection asks connected clients to open the key-selection
// dialog. Completion is not confirmed over this channel; the subsequent
// access refresh or select call reports the outcome.
func (h *hub) RequestKeySelection(ctx context.Context) error {
	h.broadcast(event{Type: "select_key"})
	return nil
}
