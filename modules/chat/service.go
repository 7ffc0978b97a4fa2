package chat

import (
	"fmt"
	"strings"
	"sync"
	"time"

	domain "github.com/example/room-chat/domain/chat"
	"github.com/example/room-chat/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// Notifier delivers server pushes to connections. Implementations must not
// block: Service calls them while holding its lock so that every recipient
// observes notifications in the order the state changed.
type Notifier interface {
	RoomMessage(recipients []string, msg domain.Message)
	RoomList(recipients []string, rooms []domain.RoomSummary)
}

type noopNotifier struct{}

func (noopNotifier) RoomMessage([]string, domain.Message)    {}
func (noopNotifier) RoomList([]string, []domain.RoomSummary) {}

// publishFunc publishes one domain event once the lock is released.
type publishFunc func(bus mono.EventBus) error

// Service is the presence state machine. It owns the room directory and the
// connection registry and serializes every mutation of both behind one mutex.
type Service struct {
	mu       sync.Mutex
	dir      *Directory
	reg      *Registry
	notifier Notifier
	bus      mono.EventBus
	logger   types.Logger
	now      func() time.Time
	lastTS   int64
}

// NewService creates a chat service with no notifier attached.
func NewService(logger types.Logger) *Service {
	return &Service{
		dir:      NewDirectory(),
		reg:      NewRegistry(),
		notifier: noopNotifier{},
		logger:   logger,
		now:      time.Now,
	}
}

// SetNotifier attaches the push delivery target.
func (s *Service) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n == nil {
		n = noopNotifier{}
	}
	s.notifier = n
}

// SetEventBus attaches the bus used for domain events. A nil bus disables them.
func (s *Service) SetEventBus(bus mono.EventBus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bus = bus
}

// Connect registers an unbound connection and sends it the current room list.
func (s *Service) Connect(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.reg.Add(connID) {
		s.logger.Warn("Connection already registered", "connID", connID)
	}
	s.notifier.RoomList([]string{connID}, s.dir.List())
}

// CreateRoom adds an empty room and pushes the new room list to everyone.
func (s *Service) CreateRoom(name, createdBy string) (string, error) {
	name, err := NormalizeRoomName(name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if err := s.dir.Create(name); err != nil {
		s.mu.Unlock()
		return "", fmt.Errorf("create room %q: %w", name, err)
	}
	s.notifier.RoomList(s.reg.IDs(), s.dir.List())
	bus := s.bus
	at := s.now()
	s.mu.Unlock()

	s.logger.Info("Room created", "room", name)
	s.publish(bus, func(bus mono.EventBus) error {
		return events.RoomCreatedV1.Publish(bus, events.RoomCreatedEvent{
			Room:      name,
			CreatedBy: createdBy,
			Timestamp: at,
		}, nil)
	})
	return name, nil
}

// Join binds an unbound connection to an existing room under displayName.
// Joining the room the connection is already bound to returns the current
// room meta without side effects.
func (s *Service) Join(connID, roomName, displayName string) (domain.RoomMeta, error) {
	roomName, err := NormalizeRoomName(roomName)
	if err != nil {
		return domain.RoomMeta{}, err
	}
	displayName, err = NormalizeDisplayName(displayName)
	if err != nil {
		return domain.RoomMeta{}, err
	}

	s.mu.Lock()
	p, ok := s.reg.Get(connID)
	if !ok {
		s.mu.Unlock()
		return domain.RoomMeta{}, ErrUnknownConnection
	}
	if p.Bound() {
		defer s.mu.Unlock()
		if p.Room == roomName {
			return domain.RoomMeta{Name: p.Room, Users: s.dir.Users(p.Room)}, nil
		}
		return domain.RoomMeta{}, fmt.Errorf("join %q while in %q: %w", roomName, p.Room, ErrAlreadyInRoom)
	}
	if err := s.dir.Add(roomName, connID, displayName); err != nil {
		s.mu.Unlock()
		return domain.RoomMeta{}, fmt.Errorf("join %q: %w", roomName, err)
	}
	p.Room = roomName
	p.DisplayName = displayName

	occupants := s.dir.Occupants(roomName)
	s.notifier.RoomMessage(occupants, s.systemMessage(displayName+" joined the room."))
	s.notifier.RoomList(s.reg.IDs(), s.dir.List())
	meta := domain.RoomMeta{Name: roomName, Users: s.dir.Users(roomName)}
	bus := s.bus
	at := s.now()
	s.mu.Unlock()

	s.logger.Info("User joined room", "connID", connID, "room", roomName, "displayName", displayName)
	s.publish(bus, func(bus mono.EventBus) error {
		return events.UserJoinedV1.Publish(bus, events.UserJoinedEvent{
			Room:         roomName,
			ConnectionID: connID,
			DisplayName:  displayName,
			Occupants:    len(occupants),
			Timestamp:    at,
		}, nil)
	})
	return meta, nil
}

// Leave unbinds a connection from its room.
func (s *Service) Leave(connID string) error {
	s.mu.Lock()
	p, ok := s.reg.Get(connID)
	if !ok {
		s.mu.Unlock()
		return ErrUnknownConnection
	}
	if !p.Bound() {
		s.mu.Unlock()
		return ErrNotInRoom
	}
	roomName, displayName := p.Room, p.DisplayName
	p.Room, p.DisplayName = "", ""
	pending := s.departLocked(connID, roomName, displayName, events.ReasonLeave)
	bus := s.bus
	s.mu.Unlock()

	s.logger.Info("User left room", "connID", connID, "room", roomName)
	s.publish(bus, pending...)
	return nil
}

// Disconnect removes a connection. If it was bound, the room is told and
// cleaned up as for Leave. Calling it again for the same id does nothing.
func (s *Service) Disconnect(connID string) {
	s.mu.Lock()
	p, ok := s.reg.Remove(connID)
	if !ok {
		s.mu.Unlock()
		return
	}
	var pending []publishFunc
	if p.Bound() {
		pending = s.departLocked(connID, p.Room, p.DisplayName, events.ReasonDisconnect)
	}
	bus := s.bus
	s.mu.Unlock()

	s.logger.Debug("Connection removed", "connID", connID, "room", p.Room)
	s.publish(bus, pending...)
}

// departLocked removes an occupant, notifies the rest of the room, deletes
// the room if it emptied and pushes the room list. Caller holds s.mu and has
// already reset the presence record.
func (s *Service) departLocked(connID, roomName, displayName, reason string) []publishFunc {
	s.dir.Remove(roomName, connID)

	var notice string
	switch reason {
	case events.ReasonDisconnect:
		name := displayName
		if strings.TrimSpace(name) == "" {
			name = "A user"
		}
		notice = name + " disconnected."
	default:
		notice = displayName + " left the room."
	}

	remaining := s.dir.Occupants(roomName)
	if len(remaining) > 0 {
		s.notifier.RoomMessage(remaining, s.systemMessage(notice))
	}
	deleted := s.dir.DeleteIfEmpty(roomName)
	s.notifier.RoomList(s.reg.IDs(), s.dir.List())

	at := s.now()
	pending := []publishFunc{func(bus mono.EventBus) error {
		return events.UserLeftV1.Publish(bus, events.UserLeftEvent{
			Room:         roomName,
			ConnectionID: connID,
			DisplayName:  displayName,
			Reason:       reason,
			Occupants:    len(remaining),
			Timestamp:    at,
		}, nil)
	}}
	if deleted {
		s.logger.Info("Room deleted", "room", roomName)
		pending = append(pending, func(bus mono.EventBus) error {
			return events.RoomDeletedV1.Publish(bus, events.RoomDeletedEvent{Room: roomName, Timestamp: at}, nil)
		})
	}
	return pending
}

// SendMessage broadcasts text from a bound connection to its room, the
// sender included.
func (s *Service) SendMessage(connID, text string) (domain.Message, error) {
	s.mu.Lock()
	p, ok := s.reg.Get(connID)
	if !ok {
		s.mu.Unlock()
		return domain.Message{}, ErrUnknownConnection
	}
	if !p.Bound() {
		s.mu.Unlock()
		return domain.Message{}, ErrNotInRoom
	}
	text, err := NormalizeMessage(text)
	if err != nil {
		s.mu.Unlock()
		return domain.Message{}, err
	}

	msg := domain.Message{
		From:      p.DisplayName,
		Text:      text,
		Timestamp: s.timestampLocked(),
	}
	recipients := s.dir.Occupants(p.Room)
	s.notifier.RoomMessage(recipients, msg)
	roomName, displayName := p.Room, p.DisplayName
	bus := s.bus
	s.mu.Unlock()

	s.logger.Debug("Message sent", "connID", connID, "room", roomName)
	s.publish(bus, func(bus mono.EventBus) error {
		return events.MessageSentV1.Publish(bus, events.MessageSentEvent{
			Room:         roomName,
			ConnectionID: connID,
			DisplayName:  displayName,
			Length:       len(text),
			Recipients:   len(recipients),
			Timestamp:    time.UnixMilli(msg.Timestamp),
		}, nil)
	})
	return msg, nil
}

// GetRoomUsers returns the display names in a room, or an empty slice if the
// room does not exist. Any caller may ask about any room.
func (s *Service) GetRoomUsers(roomName string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.Users(strings.TrimSpace(roomName))
}

// ListRooms returns the current room list.
func (s *Service) ListRooms() []domain.RoomSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.List()
}

// Presence returns a copy of the presence record for connID.
func (s *Service) Presence(connID string) (Presence, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.reg.Get(connID)
	if !ok {
		return Presence{}, false
	}
	return *p, true
}

// Stats returns connection and room counts.
func (s *Service) Stats() domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Stats{
		Connections: s.reg.Len(),
		Bound:       s.reg.BoundCount(),
		Rooms:       s.dir.Len(),
	}
}

func (s *Service) systemMessage(text string) domain.Message {
	return domain.Message{
		From:      domain.SystemSender,
		Text:      text,
		Timestamp: s.timestampLocked(),
		System:    true,
	}
}

// timestampLocked returns epoch milliseconds, never smaller than the last
// value handed out.
func (s *Service) timestampLocked() int64 {
	ts := s.now().UnixMilli()
	if ts < s.lastTS {
		ts = s.lastTS
	}
	s.lastTS = ts
	return ts
}

func (s *Service) publish(bus mono.EventBus, pending ...publishFunc) {
	if bus == nil {
		return
	}
	for _, pub := range pending {
		if err := pub(bus); err != nil {
			s.logger.Warn("Failed to publish chat event", "error", err)
		}
	}
}
