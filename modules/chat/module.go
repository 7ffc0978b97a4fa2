package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/room-chat/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module exposes the chat Service to the rest of the application: the
// WebSocket session calls it directly, REST handlers go through the
// request-reply services it registers.
type Module struct {
	service *Service
	logger  types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new chat module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		service: NewService(logger),
		logger:  logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "chat"
}

// Service returns the presence state machine.
func (m *Module) Service() *Service {
	return m.service
}

// SetNotifier attaches the push delivery target (the broadcast hub).
func (m *Module) SetNotifier(n Notifier) {
	m.service.SetNotifier(n)
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.service.SetEventBus(bus)
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.RoomCreatedV1.ToBase(),
		events.RoomDeletedV1.ToBase(),
		events.UserJoinedV1.ToBase(),
		events.UserLeftV1.ToBase(),
		events.MessageSentV1.ToBase(),
	}
}

// RegisterServices registers the request-reply services used by REST handlers.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceListRooms,
		json.Unmarshal,
		json.Marshal,
		m.handleListRooms,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListRooms, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceCreateRoom,
		json.Unmarshal,
		json.Marshal,
		m.handleCreateRoom,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreateRoom, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceGetRoomUsers,
		json.Unmarshal,
		json.Marshal,
		m.handleGetRoomUsers,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetRoomUsers, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceStats,
		json.Unmarshal,
		json.Marshal,
		m.handleStats,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceStats, err)
	}

	m.logger.Info("Registered chat services",
		"services", []string{ServiceListRooms, ServiceCreateRoom, ServiceGetRoomUsers, ServiceStats})
	return nil
}

func (m *Module) handleListRooms(_ context.Context, _ ListRoomsRequest, _ *mono.Msg) (ListRoomsResponse, error) {
	return ListRoomsResponse{Rooms: m.service.ListRooms()}, nil
}

// handleCreateRoom reports domain failures in the response body so callers
// can tell a duplicate name from a transport fault.
func (m *Module) handleCreateRoom(_ context.Context, req CreateRoomRequest, _ *mono.Msg) (CreateRoomResponse, error) {
	name, err := m.service.CreateRoom(req.Name, req.CreatedBy)
	if err != nil {
		return CreateRoomResponse{Error: err.Error(), Code: Code(err)}, nil
	}
	return CreateRoomResponse{Name: name}, nil
}

func (m *Module) handleGetRoomUsers(_ context.Context, req GetRoomUsersRequest, _ *mono.Msg) (GetRoomUsersResponse, error) {
	return GetRoomUsersResponse{Room: req.Room, Users: m.service.GetRoomUsers(req.Room)}, nil
}

func (m *Module) handleStats(_ context.Context, _ StatsRequest, _ *mono.Msg) (StatsResponse, error) {
	return StatsResponse{Stats: m.service.Stats()}, nil
}

// Start starts the chat module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Chat module started")
	return nil
}

// Stop stops the chat module. Connections are closed by the transport,
// which runs their disconnect cleanup.
func (m *Module) Stop(_ context.Context) error {
	stats := m.service.Stats()
	m.logger.Info("Chat module stopped", "connections", stats.Connections, "rooms", stats.Rooms)
	return nil
}

// Health reports presence counts.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	stats := m.service.Stats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connections": stats.Connections,
			"bound":       stats.Bound,
			"rooms":       stats.Rooms,
		},
	}
}
