// Package protocol defines the JSON frames exchanged over the chat WebSocket.
//
// Every frame is an envelope {"type", "id", "data"}. Client requests carry an
// id that the server echoes on exactly one ack frame. Server pushes (room list
// changes and chat messages) carry no id.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	domain "github.com/example/room-chat/domain/chat"
)

// Client request types.
const (
	TypeCreateRoom   = "createRoom"
	TypeJoinRoom     = "joinRoom"
	TypeLeaveRoom    = "leaveRoom"
	TypeSendMessage  = "sendMessage"
	TypeGetRoomUsers = "getRoomUsers"
	TypeListRooms    = "listRooms"
)

// Server frame types.
const (
	TypeAck      = "ack"
	TypeError    = "error"
	TypeRoomList = "roomList"
	TypeMessage  = "message"
)

// Wire codes for failures that do not originate in the chat domain.
const (
	CodeBadRequest  = "BadRequest"
	CodeUnknownType = "UnknownType"
	CodeRateLimited = "RateLimited"
	CodeInternal    = "InternalError"
)

var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrMissingType    = errors.New("frame type is required")
	ErrBadPayload     = errors.New("invalid payload for frame type")
)

// Frame is the envelope for every message in both directions.
type Frame struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// JoinRoomData is the payload of a joinRoom request.
type JoinRoomData struct {
	RoomName    string `json:"roomName"`
	DisplayName string `json:"displayName"`
}

// Ack is the payload of an ack or error frame.
type Ack struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// JoinAck acknowledges a successful joinRoom.
type JoinAck struct {
	Ack
	Room domain.RoomMeta `json:"room"`
}

// UsersAck answers getRoomUsers.
type UsersAck struct {
	Ack
	Users []string `json:"users"`
}

// RoomsAck answers listRooms.
type RoomsAck struct {
	Ack
	Rooms []domain.RoomSummary `json:"rooms"`
}

// Decode parses a raw text frame. When the envelope parses but is unusable,
// the returned Frame still carries whatever id was present so the caller can
// ack the failure.
func Decode(raw []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		// Salvage the id from a frame whose data does not parse as expected.
		var partial struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(raw, &partial)
		return Frame{ID: partial.ID}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	f.Type = strings.TrimSpace(f.Type)
	if f.Type == "" {
		return f, ErrMissingType
	}
	return f, nil
}

// StringData decodes a payload that is a bare JSON string. A missing payload
// decodes as the empty string so validation can report it.
func (f Frame) StringData() (string, error) {
	if len(f.Data) == 0 || string(f.Data) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(f.Data, &s); err != nil {
		return "", fmt.Errorf("%w %q: expected string", ErrBadPayload, f.Type)
	}
	return s, nil
}

// JoinData decodes a joinRoom payload.
func (f Frame) JoinData() (JoinRoomData, error) {
	var d JoinRoomData
	if len(f.Data) == 0 || string(f.Data) == "null" {
		return d, nil
	}
	if err := json.Unmarshal(f.Data, &d); err != nil {
		return d, fmt.Errorf("%w %q: expected {roomName, displayName}", ErrBadPayload, f.Type)
	}
	return d, nil
}

// EncodeAck builds an ack frame for request id. ack is an Ack or one of the
// types embedding it.
func EncodeAck(id string, ack any) ([]byte, error) {
	return encode(TypeAck, id, ack)
}

// EncodeError builds an error frame for a request that cannot be acked.
func EncodeError(msg, code string) ([]byte, error) {
	return encode(TypeError, "", Ack{OK: false, Error: msg, Code: code})
}

// EncodeRoomList builds a roomList push frame.
func EncodeRoomList(rooms []domain.RoomSummary) ([]byte, error) {
	if rooms == nil {
		rooms = []domain.RoomSummary{}
	}
	return encode(TypeRoomList, "", rooms)
}

// EncodeMessage builds a message push frame.
func EncodeMessage(msg domain.Message) ([]byte, error) {
	return encode(TypeMessage, "", msg)
}

func encode(typ, id string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s data: %w", typ, err)
	}
	return json.Marshal(Frame{Type: typ, ID: id, Data: payload})
}
