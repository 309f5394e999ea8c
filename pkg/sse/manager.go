package sse

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// Event is one server-sent message targeted at a single user.
type Event struct {
	UserID string
	Type   string
	Data   interface{}
}

type client struct {
	userID string
	ch     chan Event
}

// Manager fans events out to all connected SSE clients of a user. Emission is
// fire-and-forget: a slow client drops events rather than blocking the sender.
type Manager struct {
	register   chan *client
	unregister chan *client
	events     chan Event

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewManager() *Manager {
	return &Manager{
		register:   make(chan *client),
		unregister: make(chan *client),
		events:     make(chan Event, 256),
		clients:    make(map[*client]struct{}),
	}
}

// Run processes register/unregister/broadcast messages. Start once, in its
// own goroutine.
func (m *Manager) Run() {
	for {
		select {
		case c := <-m.register:
			m.mu.Lock()
			m.clients[c] = struct{}{}
			m.mu.Unlock()
		case c := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[c]; ok {
				delete(m.clients, c)
				close(c.ch)
			}
			m.mu.Unlock()
		case evt := <-m.events:
			m.mu.RLock()
			for c := range m.clients {
				if c.userID != evt.UserID {
					continue
				}
				select {
				case c.ch <- evt:
				default:
					// Client not keeping up, drop the event.
				}
			}
			m.mu.RUnlock()
		}
	}
}

// SendToUser queues an event for every open connection of the user.
func (m *Manager) SendToUser(userID string, eventType string, payload interface{}) {
	select {
	case m.events <- Event{UserID: userID, Type: eventType, Data: payload}:
	default:
		log.Printf("[SSE] event queue full, dropping %s for user %s", eventType, userID)
	}
}

// ServeHTTP holds the connection open and streams events until the client
// disconnects.
func (m *Manager) ServeHTTP(c *gin.Context, userID string) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	cl := &client{userID: userID, ch: make(chan Event, 16)}
	m.register <- cl
	defer func() { m.unregister <- cl }()

	// Initial comment so proxies flush headers immediately.
	fmt.Fprintf(c.Writer, ": connected\n\n")
	flusher.Flush()

	notify := c.Request.Context().Done()
	for {
		select {
		case <-notify:
			return
		case evt, ok := <-cl.ch:
			if !ok {
				return
			}
			data, err := json.Marshal(evt.Data)
			if err != nil {
				log.Printf("[SSE] marshal event: %v", err)
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", evt.Type, data)
			flusher.Flush()
		}
	}
}
