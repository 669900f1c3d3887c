package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"whatsapp-bulk-sender/internal/dispatch"
	"whatsapp-bulk-sender/pkg/models"
)

const (
	EventDispatchProgress = "dispatch_progress"
	EventDispatchFinished = "dispatch_finished"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client represents a connected WebSocket client
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans dispatch events out to every connected operator screen.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	log        zerolog.Logger
	// done stops Run; sends to the hub give up once it is closed.
	done <-chan struct{}
}

func NewHub(done <-chan struct{}, log zerolog.Logger) *Hub {
	return &Hub{
		done:       done,
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		log:        log.With().Str("component", "ws").Logger(),
	}
}

// Run serves register, unregister and broadcast requests until done is closed.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Debug().Msg("client registered")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.log.Debug().Msg("client unregistered")
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

type WSEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func (h *Hub) BroadcastEvent(eventType string, data any) {
	payload, err := json.Marshal(WSEvent{Type: eventType, Data: data})
	if err != nil {
		h.log.Error().Err(err).Str("type", eventType).Msg("marshal event")
		return
	}
	select {
	case h.broadcast <- payload:
	case <-h.done:
	}
}

// Forward relays engine progress until events or done is closed. Events
// that leave the running state are sent as dispatch_finished.
func (h *Hub) Forward(events <-chan models.ProgressEvent) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.NotifyProgress(ev)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) NotifyProgress(ev models.ProgressEvent) {
	if ev.State == string(dispatch.StateRunning) {
		h.BroadcastEvent(EventDispatchProgress, ev)
		return
	}
	h.BroadcastEvent(EventDispatchFinished, ev)
}

func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("upgrade failed")
		return
	}
	client := &Client{hub: h, conn: conn, send: make(chan []byte, 256)}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		// Nothing is expected from the client; reads only detect the close.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
