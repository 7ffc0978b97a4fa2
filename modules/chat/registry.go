package chat

// Presence is the server-side session state of one connection. An empty
// Room means the connection is unbound.
type Presence struct {
	ConnID      string
	Room        string
	DisplayName string
}

// Bound reports whether the connection is bound to a room.
func (p Presence) Bound() bool {
	return p.Room != ""
}

// Registry tracks presence per connection id. Like Directory, it relies on
// Service for serialization.
type Registry struct {
	entries map[string]*Presence
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Presence)}
}

// Add registers an unbound connection. It reports false if already present.
func (r *Registry) Add(connID string) bool {
	if _, ok := r.entries[connID]; ok {
		return false
	}
	r.entries[connID] = &Presence{ConnID: connID}
	r.order = append(r.order, connID)
	return true
}

// Get returns the presence record for connID.
func (r *Registry) Get(connID string) (*Presence, bool) {
	p, ok := r.entries[connID]
	return p, ok
}

// Remove drops the presence record and returns its last state.
func (r *Registry) Remove(connID string) (Presence, bool) {
	p, ok := r.entries[connID]
	if !ok {
		return Presence{}, false
	}
	delete(r.entries, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return *p, true
}

// IDs returns every registered connection id in connect order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	return len(r.entries)
}

// BoundCount returns how many connections are bound to a room.
func (r *Registry) BoundCount() int {
	n := 0
	for _, p := range r.entries {
		if p.Bound() {
			n++
		}
	}
	return n
}
