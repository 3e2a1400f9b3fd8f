package ws

import "sync"

// Registry is the table of live rooms for one game type. It is an
// explicitly owned object injected into the manager that accepts
// connections, never package-level state. A room is present exactly
// while it has at least one connection (or is mid-creation by the join
// that is building it).
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Get returns the room for id, or nil. Timer callbacks and late
// messages use this to re-fetch a room that may already be gone.
func (r *Registry) Get(id string) *Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[id]
}

// GetOrCreate resolves id under the game's admission policy. The build
// callback runs inside the table lock, so two racing creations of the
// same id observe a single room: the second caller gets the first's.
func (r *Registry) GetOrCreate(id, mode string, policy Policy, build func() *Room) (room *Room, created bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, exists := r.rooms[id]
	switch {
	case exists && mode == ModeCreate && policy.ExclusiveCreate:
		return nil, false, ErrRoomExists
	case exists:
		return room, false, nil
	case mode != ModeCreate && !policy.ImplicitCreate:
		return nil, false, ErrRoomNotFound
	}

	room = build()
	r.rooms[id] = room
	return room, true, nil
}

// Remove drops id from the table. Idempotent.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, id)
}

// Len reports the number of live rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Rooms returns a snapshot of the live rooms.
func (r *Registry) Rooms() []*Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room)
	}
	return out
}
