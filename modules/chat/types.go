package chat

import (
	"fmt"
	"strings"
	"unicode/utf8"

	domain "github.com/example/room-chat/domain/chat"
)

// Validation constants
const (
	MaxDisplayNameLength = 50
	MaxRoomNameLength    = 100
	MaxMessageLength     = 5000
)

// Request-reply service names registered by the chat module.
const (
	ServiceListRooms    = "list-rooms"
	ServiceCreateRoom   = "create-room"
	ServiceGetRoomUsers = "get-room-users"
	ServiceStats        = "chat-stats"
)

// NormalizeRoomName trims and validates a room name.
func NormalizeRoomName(name string) (string, error) {
	return normalizeName("room name", name, MaxRoomNameLength)
}

// NormalizeDisplayName trims and validates a display name.
func NormalizeDisplayName(name string) (string, error) {
	return normalizeName("display name", name, MaxDisplayNameLength)
}

func normalizeName(field, name string, limit int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%s: %w", field, ErrInvalidName)
	}
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("%s: %w", field, ErrInvalidEncoding)
	}
	if len(name) > limit {
		return "", fmt.Errorf("%s: %w", field, ErrNameTooLong)
	}
	return name, nil
}

// NormalizeMessage trims and validates message text.
func NormalizeMessage(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}
	if !utf8.ValidString(text) {
		return "", ErrInvalidEncoding
	}
	if len(text) > MaxMessageLength {
		return "", ErrMessageTooLong
	}
	return text, nil
}

// ListRoomsRequest is the request for the list-rooms service.
type ListRoomsRequest struct{}

// ListRoomsResponse is the response from the list-rooms service.
type ListRoomsResponse struct {
	Rooms []domain.RoomSummary `json:"rooms"`
}

// CreateRoomRequest is the request for the create-room service.
type CreateRoomRequest struct {
	Name      string `json:"name"`
	CreatedBy string `json:"created_by,omitempty"`
}

// CreateRoomResponse is the response from the create-room service.
type CreateRoomResponse struct {
	Name  string `json:"name,omitempty"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// GetRoomUsersRequest is the request for the get-room-users service.
type GetRoomUsersRequest struct {
	Room string `json:"room"`
}

// GetRoomUsersResponse is the response from the get-room-users service.
type GetRoomUsersResponse struct {
	Room  string   `json:"room"`
	Users []string `json:"users"`
}

// StatsRequest is the request for the chat-stats service.
type StatsRequest struct{}

// StatsResponse is the response from the chat-stats service.
type StatsResponse struct {
	domain.Stats
}
