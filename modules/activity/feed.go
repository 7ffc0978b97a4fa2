package activity

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry kinds.
const (
	KindRoomCreated = "room_created"
	KindRoomDeleted = "room_deleted"
	KindUserJoined  = "user_joined"
	KindUserLeft    = "user_left"
	KindMessage     = "message"
)

// Entry is one line of the activity feed. Message text is never recorded.
type Entry struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Room        string    `json:"room"`
	DisplayName string    `json:"display_name,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Count       int       `json:"count,omitempty"`
	At          time.Time `json:"at"`
}

// Feed keeps the most recent entries in a fixed-size ring.
type Feed struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
}

// NewFeed creates a feed holding up to size entries.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = 100
	}
	return &Feed{entries: make([]Entry, size)}
}

// Add records an entry, assigning an id if it has none.
func (f *Feed) Add(e Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[f.next] = e
	f.next = (f.next + 1) % len(f.entries)
	if f.next == 0 {
		f.full = true
	}
}

// Recent returns up to limit entries, newest first. limit <= 0 means all.
func (f *Feed) Recent(limit int) []Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()

	n := f.next
	if f.full {
		n = len(f.entries)
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	result := make([]Entry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (f.next - i + len(f.entries)) % len(f.entries)
		result = append(result, f.entries[idx])
	}
	return result
}

// Cap returns the number of entries the feed can hold.
func (f *Feed) Cap() int {
	return len(f.entries)
}

// Len returns the number of entries held.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.full {
		return len(f.entries)
	}
	return f.next
}
