package api

import (
	domain "github.com/example/room-chat/domain/chat"
	"github.com/example/room-chat/modules/activity"
)

// CreateRoomRequest is the API request to create a room.
type CreateRoomRequest struct {
	Name string `json:"name"`
}

// RoomResponse is the API response for a created room.
type RoomResponse struct {
	Name string `json:"name"`
}

// RoomListResponse is the API response for listing rooms.
type RoomListResponse struct {
	Rooms []domain.RoomSummary `json:"rooms"`
}

// RoomUsersResponse is the API response for a room's occupants.
type RoomUsersResponse struct {
	Room  string   `json:"room"`
	Users []string `json:"users"`
}

// ActivityResponse is the API response for the recent activity feed.
type ActivityResponse struct {
	Entries []activity.Entry `json:"entries"`
}

// ErrorResponse is the API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the API health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
