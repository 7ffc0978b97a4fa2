package chat

import (
	"sort"
	"strings"

	domain "github.com/example/room-chat/domain/chat"
)

// occupant is one connection bound to a room.
type occupant struct {
	connID string
	name   string
}

// room holds the occupants of a single room in join order.
type room struct {
	name      string
	occupants []occupant
}

func (r *room) nameTaken(name string) bool {
	for _, o := range r.occupants {
		if strings.EqualFold(o.name, name) {
			return true
		}
	}
	return false
}

func (r *room) remove(connID string) (occupant, bool) {
	for i, o := range r.occupants {
		if o.connID == connID {
			r.occupants = append(r.occupants[:i], r.occupants[i+1:]...)
			return o, true
		}
	}
	return occupant{}, false
}

func (r *room) connIDs() []string {
	ids := make([]string, len(r.occupants))
	for i, o := range r.occupants {
		ids[i] = o.connID
	}
	return ids
}

func (r *room) names() []string {
	names := make([]string, len(r.occupants))
	for i, o := range r.occupants {
		names[i] = o.name
	}
	return names
}

// Directory maps room names to their occupants. It is not safe for
// concurrent use; Service serializes all access.
type Directory struct {
	rooms map[string]*room
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{rooms: make(map[string]*room)}
}

// Create adds an empty room. name must already be normalized.
func (d *Directory) Create(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if _, exists := d.rooms[name]; exists {
		return ErrAlreadyExists
	}
	d.rooms[name] = &room{name: name}
	return nil
}

// Exists reports whether a room is present.
func (d *Directory) Exists(name string) bool {
	_, ok := d.rooms[name]
	return ok
}

// Add binds connID under displayName to an existing room.
func (d *Directory) Add(name, connID, displayName string) error {
	r, ok := d.rooms[name]
	if !ok {
		return ErrNotFound
	}
	if r.nameTaken(displayName) {
		return ErrNameTaken
	}
	r.occupants = append(r.occupants, occupant{connID: connID, name: displayName})
	return nil
}

// Remove unbinds connID from a room. It reports whether the occupant was present.
func (d *Directory) Remove(name, connID string) bool {
	r, ok := d.rooms[name]
	if !ok {
		return false
	}
	_, removed := r.remove(connID)
	return removed
}

// DeleteIfEmpty removes the room when it has no occupants. Idempotent.
func (d *Directory) DeleteIfEmpty(name string) bool {
	r, ok := d.rooms[name]
	if !ok || len(r.occupants) > 0 {
		return false
	}
	delete(d.rooms, name)
	return true
}

// Users returns occupant display names in join order.
func (d *Directory) Users(name string) []string {
	r, ok := d.rooms[name]
	if !ok {
		return []string{}
	}
	return r.names()
}

// Occupants returns the connection ids bound to a room.
func (d *Directory) Occupants(name string) []string {
	r, ok := d.rooms[name]
	if !ok {
		return nil
	}
	return r.connIDs()
}

// Len returns the number of rooms.
func (d *Directory) Len() int {
	return len(d.rooms)
}

// List returns every room with its occupant count, sorted by name.
func (d *Directory) List() []domain.RoomSummary {
	result := make([]domain.RoomSummary, 0, len(d.rooms))
	for _, r := range d.rooms {
		result = append(result, domain.RoomSummary{Name: r.name, UserCount: len(r.occupants)})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}
