package chat

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/room-chat/domain/chat"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ChatPort defines the chat operations available to modules that depend on
// the chat module.
type ChatPort interface {
	ListRooms(ctx context.Context) ([]domain.RoomSummary, error)
	CreateRoom(ctx context.Context, name string) (string, error)
	GetRoomUsers(ctx context.Context, room string) ([]string, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

// ChatAdapter implements ChatPort using the service container.
type ChatAdapter struct {
	container mono.ServiceContainer
}

// NewChatAdapter creates a new ChatAdapter.
func NewChatAdapter(container mono.ServiceContainer) ChatPort {
	if container == nil {
		panic("chat: ServiceContainer is nil")
	}
	return &ChatAdapter{container: container}
}

// ListRooms returns all rooms with their occupant counts.
func (a *ChatAdapter) ListRooms(ctx context.Context) ([]domain.RoomSummary, error) {
	req := ListRoomsRequest{}
	var resp ListRoomsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceListRooms,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	if resp.Rooms == nil {
		resp.Rooms = []domain.RoomSummary{}
	}
	return resp.Rooms, nil
}

// CreateRoom creates a room. Domain failures come back as chat sentinels.
func (a *ChatAdapter) CreateRoom(ctx context.Context, name string) (string, error) {
	req := CreateRoomRequest{Name: name, CreatedBy: "api"}
	var resp CreateRoomResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceCreateRoom,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return "", fmt.Errorf("failed to create room: %w", err)
	}
	if resp.Code != "" {
		return "", FromCode(resp.Code, resp.Error)
	}
	return resp.Name, nil
}

// GetRoomUsers returns the display names in a room.
func (a *ChatAdapter) GetRoomUsers(ctx context.Context, room string) ([]string, error) {
	req := GetRoomUsersRequest{Room: room}
	var resp GetRoomUsersResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetRoomUsers,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to get room users: %w", err)
	}
	if resp.Users == nil {
		resp.Users = []string{}
	}
	return resp.Users, nil
}

// Stats returns presence counts.
func (a *ChatAdapter) Stats(ctx context.Context) (domain.Stats, error) {
	req := StatsRequest{}
	var resp StatsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceStats,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return domain.Stats{}, fmt.Errorf("failed to get chat stats: %w", err)
	}
	return resp.Stats, nil
}
