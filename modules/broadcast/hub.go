package broadcast

import (
	"context"
	"errors"
	"sync"

	domain "github.com/example/room-chat/domain/chat"
	"github.com/example/room-chat/protocol"
	"github.com/go-monolith/mono/pkg/types"
)

var (
	ErrHubClosed      = errors.New("hub is closed")
	ErrClientNotFound = errors.New("client not registered")
	ErrSendBufferFull = errors.New("client send buffer full")
)

// Hub tracks connected clients and fans frames out to their send queues.
// Delivery never blocks: a client whose queue is full misses the frame.
type Hub struct {
	clients    map[string]*Client // connID -> Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	logger     types.Logger
	onDrop     func(connID string)
}

// NewHub creates a new Hub.
func NewHub(logger types.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// OnDrop sets a callback invoked for every frame dropped on a full queue.
// Must be called before Run.
func (h *Hub) OnDrop(fn func(connID string)) {
	h.onDrop = fn
}

// Run starts the hub's main loop. It accepts a context for graceful shutdown.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Hub shutting down")
			h.closeAllClients()
			close(h.done)
			return
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

// closeAllClients closes every send queue; each writer then closes its socket,
// which ends the read loop and triggers the session's disconnect cleanup.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		client.closeSend()
		delete(h.clients, id)
	}
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	if old, ok := h.clients[client.ID]; ok && old != client {
		old.closeSend()
	}
	h.clients[client.ID] = client
	h.mu.Unlock()

	close(client.registered)
	h.logger.Debug("Client registered", "connID", client.ID)
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[client.ID]; ok && current == client {
		delete(h.clients, client.ID)
		client.closeSend()
		h.logger.Debug("Client unregistered", "connID", client.ID)
	}
}

// Register adds a client and returns once it can receive frames.
func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
	case <-h.done:
		return ErrHubClosed
	}
	<-client.registered
	return nil
}

// Unregister removes a client and closes its send queue. It is a no-op once
// the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Send enqueues a frame for a single connection.
func (h *Hub) Send(connID string, frame []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[connID]
	if !ok {
		return ErrClientNotFound
	}
	if !h.enqueue(client, frame) {
		return ErrSendBufferFull
	}
	return nil
}

// RoomMessage delivers a chat message to the given connections.
func (h *Hub) RoomMessage(recipients []string, msg domain.Message) {
	frame, err := protocol.EncodeMessage(msg)
	if err != nil {
		h.logger.Error("Failed to encode message frame", "error", err)
		return
	}
	h.deliver(recipients, frame)
}

// RoomList delivers a room list snapshot to the given connections.
func (h *Hub) RoomList(recipients []string, rooms []domain.RoomSummary) {
	frame, err := protocol.EncodeRoomList(rooms)
	if err != nil {
		h.logger.Error("Failed to encode room list frame", "error", err)
		return
	}
	h.deliver(recipients, frame)
}

func (h *Hub) deliver(recipients []string, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, id := range recipients {
		client, ok := h.clients[id]
		if !ok {
			continue
		}
		h.enqueue(client, frame)
	}
}

// enqueue must be called with h.mu held; closeSend only runs under the write lock.
func (h *Hub) enqueue(client *Client, frame []byte) bool {
	select {
	case client.send <- frame:
		return true
	default:
		h.logger.Warn("Dropping frame for slow client", "connID", client.ID)
		if h.onDrop != nil {
			h.onDrop(client.ID)
		}
		return false
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
