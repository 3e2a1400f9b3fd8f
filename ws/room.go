package ws

import (
	"encoding/json"
	"sync"
	"time"
)

// Conn is the transport half the engine needs from a connection. Sends
// are best-effort: a false return marks the connection dead and the
// dispatcher prunes it once the fan-out pass completes.
type Conn interface {
	TrySend(data []byte) bool
	Close() error
}

// Player is one seat in a room.
type Player struct {
	Name     string
	JoinedAt time.Time
}

// Room is one isolated game session: the player set, the live
// connections, the game state machine and a single timer slot. All
// fields below mu are guarded by it; handler invocations for one room
// (inbound events, timer fires, disconnects) are serialized on this
// lock, and no two rooms share a critical section.
type Room struct {
	ID   string
	game Game

	mu           sync.Mutex
	players      map[string]*Player
	conns        map[string]Conn
	state        RoomState
	timer        *timerHandle
	passwordHash []byte
	inviteKey    string
	createdAt    time.Time
}

func newRoom(id string, game Game) *Room {
	return &Room{
		ID:        id,
		game:      game,
		players:   make(map[string]*Player),
		conns:     make(map[string]Conn),
		createdAt: time.Now(),
	}
}

// PlayerCount reports the seated player count.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// broadcastLocked serializes payload once and delivers it to every live
// connection. Failed connections are pruned from the connection set
// after the pass, never during it; the seat itself is released by the
// disconnect path when the dead connection's read pump exits.
func (r *Room) broadcastLocked(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	var dead []string
	for pid, conn := range r.conns {
		if !conn.TrySend(data) {
			dead = append(dead, pid)
		}
	}
	for _, pid := range dead {
		delete(r.conns, pid)
	}
}

// broadcastEachLocked delivers a per-player payload, evaluated for each
// pid against the same consistent view of room state.
func (r *Room) broadcastEachLocked(view func(pid string) (any, bool)) {
	var dead []string
	for pid, conn := range r.conns {
		payload, ok := view(pid)
		if !ok {
			continue
		}
		data, err := json.Marshal(payload)
		if err != nil {
			continue
		}
		if !conn.TrySend(data) {
			dead = append(dead, pid)
		}
	}
	for _, pid := range dead {
		delete(r.conns, pid)
	}
}

func (r *Room) unicastLocked(pid string, payload any) {
	conn, ok := r.conns[pid]
	if !ok {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if !conn.TrySend(data) {
		delete(r.conns, pid)
	}
}

// stopTimerLocked cancels the armed timer, if any. Safe to call when
// nothing is armed. A callback already mid-fire observes that its
// handle is no longer current and backs off without touching state.
func (r *Room) stopTimerLocked() {
	if r.timer != nil {
		close(r.timer.stop)
		r.timer = nil
	}
}
