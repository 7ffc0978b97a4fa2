package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// Departure reasons carried by UserLeftEvent.
const (
	ReasonLeave      = "leave"
	ReasonDisconnect = "disconnect"
)

// MessageSentEvent is emitted when a user sends a message. Message text is
// not carried; subscribers only need the fact and its size.
type MessageSentEvent struct {
	Room         string    `json:"room"`
	ConnectionID string    `json:"connection_id"`
	DisplayName  string    `json:"display_name"`
	Length       int       `json:"length"`
	Recipients   int       `json:"recipients"`
	Timestamp    time.Time `json:"timestamp"`
}

// UserJoinedEvent is emitted when a connection binds to a room.
type UserJoinedEvent struct {
	Room         string    `json:"room"`
	ConnectionID string    `json:"connection_id"`
	DisplayName  string    `json:"display_name"`
	Occupants    int       `json:"occupants"`
	Timestamp    time.Time `json:"timestamp"`
}

// UserLeftEvent is emitted when a connection leaves a room or disconnects
// while bound.
type UserLeftEvent struct {
	Room         string    `json:"room"`
	ConnectionID string    `json:"connection_id"`
	DisplayName  string    `json:"display_name"`
	Reason       string    `json:"reason"`
	Occupants    int       `json:"occupants"`
	Timestamp    time.Time `json:"timestamp"`
}

// RoomCreatedEvent is emitted when a new room is created.
type RoomCreatedEvent struct {
	Room      string    `json:"room"`
	CreatedBy string    `json:"created_by,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomDeletedEvent is emitted when the last occupant departs a room.
type RoomDeletedEvent struct {
	Room      string    `json:"room"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the chat domain.
var (
	MessageSentV1 = helper.EventDefinition[MessageSentEvent](
		"chat",
		"MessageSent",
		"v1",
	)

	UserJoinedV1 = helper.EventDefinition[UserJoinedEvent](
		"chat",
		"UserJoined",
		"v1",
	)

	UserLeftV1 = helper.EventDefinition[UserLeftEvent](
		"chat",
		"UserLeft",
		"v1",
	)

	RoomCreatedV1 = helper.EventDefinition[RoomCreatedEvent](
		"chat",
		"RoomCreated",
		"v1",
	)

	RoomDeletedV1 = helper.EventDefinition[RoomDeletedEvent](
		"chat",
		"RoomDeleted",
		"v1",
	)
)
