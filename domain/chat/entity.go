package chat

// SystemSender is the sender name on join, leave and disconnect notices.
const SystemSender = "System"

// RoomSummary is one entry of the room directory listing.
type RoomSummary struct {
	Name      string `json:"name"`
	UserCount int    `json:"userCount"`
}

// RoomMeta describes a room as seen by a client that just joined it.
type RoomMeta struct {
	Name  string   `json:"name"`
	Users []string `json:"users"`
}

// Message is a chat line or a system notice. Timestamp is epoch milliseconds.
type Message struct {
	From      string `json:"from"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	System    bool   `json:"system"`
}

// Stats is a point-in-time count of presence state.
type Stats struct {
	Connections int `json:"connections"`
	Bound       int `json:"bound"`
	Rooms       int `json:"rooms"`
}
