package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/example/room-chat/modules/broadcast"
	"github.com/example/room-chat/modules/chat"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 1000
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	// Health check
	app.Get("/health", m.healthHandler)

	if m.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.metrics))
	}

	// WebSocket endpoint
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(m.handleWebSocket, websocket.Config{
		Origins: m.cfg.AllowedOrigins,
	}))

	// REST API v1
	api := app.Group("/api/v1")

	api.Get("/rooms", m.listRooms)
	api.Post("/rooms", m.createRoom)
	api.Get("/rooms/:name/users", m.getRoomUsers)
	api.Get("/activity", m.getActivity)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	stats, err := m.chatAdapter.Stats(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status:  "unhealthy",
			Details: map[string]any{"error": err.Error()},
		})
	}

	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"connections":       stats.Connections,
			"bound":             stats.Bound,
			"rooms":             stats.Rooms,
			"connected_clients": m.hub.ClientCount(),
		},
	})
}

// listRooms handles GET /api/v1/rooms.
func (m *APIModule) listRooms(c *fiber.Ctx) error {
	rooms, err := m.chatAdapter.ListRooms(c.UserContext())
	if err != nil {
		m.logger.Error("Failed to list rooms", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list rooms",
		})
	}
	return c.JSON(RoomListResponse{Rooms: rooms})
}

// createRoom handles POST /api/v1/rooms.
func (m *APIModule) createRoom(c *fiber.Ctx) error {
	var req CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	name, err := m.chatAdapter.CreateRoom(c.UserContext(), req.Name)
	switch {
	case err == nil:
		return c.Status(fiber.StatusCreated).JSON(RoomResponse{Name: name})
	case errors.Is(err, chat.ErrAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "already_exists",
			Message: err.Error(),
		})
	case chat.Code(err) == chat.CodeValidation:
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	default:
		m.logger.Error("Failed to create room", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "create_failed",
			Message: "Failed to create room",
		})
	}
}

// getRoomUsers handles GET /api/v1/rooms/:name/users. An unknown room has no
// users rather than being an error.
func (m *APIModule) getRoomUsers(c *fiber.Ctx) error {
	room := c.Params("name")

	users, err := m.chatAdapter.GetRoomUsers(c.UserContext(), room)
	if err != nil {
		m.logger.Error("Failed to get room users", "room", room, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "users_failed",
			Message: "Failed to get room users",
		})
	}
	return c.JSON(RoomUsersResponse{Room: room, Users: users})
}

// getActivity handles GET /api/v1/activity.
func (m *APIModule) getActivity(c *fiber.Ctx) error {
	limit := defaultActivityLimit
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= maxActivityLimit {
			limit = parsed
		}
	}

	entries, err := m.activityAdapter.Recent(c.UserContext(), limit)
	if err != nil {
		m.logger.Error("Failed to get activity", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "activity_failed",
			Message: "Failed to get recent activity",
		})
	}
	return c.JSON(ActivityResponse{Entries: entries})
}

// pongWait is how long a connection may stay silent, pongs included, before
// its read fails.
func (m *APIModule) pongWait() time.Duration {
	return m.cfg.PingInterval * 5 / 2
}

// handleWebSocket handles WebSocket connections at /ws. The connection is
// registered with the hub before Connect so the initial room list reaches it.
// Every exit path ends in Disconnect.
func (m *APIModule) handleWebSocket(c *websocket.Conn) {
	connID := uuid.NewString()
	logger := m.logger.With("connID", connID)

	client := broadcast.NewClient(connID, c, m.cfg.SendBufferSize)
	if err := m.hub.Register(client); err != nil {
		logger.Warn("Rejecting WebSocket connection", "error", err)
		_ = c.Close()
		return
	}
	// The conn is released back to a pool when this handler returns, so the
	// writer must be done with it first.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		client.WritePump(m.cfg.PingInterval)
	}()

	m.chat.Connect(connID)
	defer func() {
		m.chat.Disconnect(connID)
		m.hub.Unregister(client)
		<-writerDone
		logger.Info("WebSocket client disconnected")
	}()

	logger.Info("WebSocket client connected", "remote", c.RemoteAddr().String())

	c.SetReadLimit(m.cfg.MaxMessageSize)
	_ = c.SetReadDeadline(time.Now().Add(m.pongWait()))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(m.pongWait()))
	})

	limiter := rate.NewLimiter(rate.Limit(m.cfg.RatePerSecond), m.cfg.RateBurst)
	sess := newSession(connID, m.chat, limiter, logger)

	err := m.readLoop(c, sess)
	switch {
	case websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure):
		logger.Debug("Client closed connection")
	case websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure):
		logger.Warn("Unexpected close", "error", err)
	case errors.Is(err, broadcast.ErrSendBufferFull):
		// Closing here fails the writer's pending writes instead of draining
		// the queue to a peer that is not reading.
		logger.Warn("Closing slow client", "error", err)
		_ = c.Close()
	default:
		logger.Debug("Read loop stopped", "error", err)
	}
}

// frameReader is the read side of a WebSocket connection.
type frameReader interface {
	ReadMessage() (messageType int, p []byte, err error)
	SetReadDeadline(t time.Time) error
}

// readLoop answers each inbound frame until the connection fails. A reply that
// cannot be queued ends the loop, so the caller is never left waiting on an
// ack that was dropped.
func (m *APIModule) readLoop(conn frameReader, sess *session) error {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(m.pongWait()))

		if err := m.hub.Send(sess.connID, sess.handle(raw)); err != nil {
			return err
		}
	}
}
