package ws

import "time"

// Policy describes one game's admission rules. Differences between game
// variants (exclusive creation, implicit creation, player caps) live
// here instead of being special-cased in the engine.
type Policy struct {
	// MaxPlayers caps the player set. Zero means unlimited.
	MaxPlayers int
	// ImplicitCreate makes a join create the room when it is absent,
	// regardless of the requested mode.
	ImplicitCreate bool
	// ExclusiveCreate rejects mode=create over an existing room id.
	ExclusiveCreate bool
	// UniqueNames rejects joins whose display name collides with a
	// seated player's.
	UniqueNames bool
	// Passwords lets rooms be created with a password and invite key.
	Passwords bool
}

// Meta is the engine-owned room metadata a rule module may surface to
// clients, e.g. in its joined frame.
type Meta struct {
	RoomID      string
	HasPassword bool
	InviteKey   string
}

// Game is one pluggable rule module. The engine never inspects
// game-specific payloads; it only invokes the RoomState entry points
// and executes the effects they return.
type Game interface {
	Name() string
	Policy() Policy
	// NewRoom builds the initial state for a freshly created room. The
	// join frame that created the room is passed through so modules can
	// read their own creation options.
	NewRoom(meta Meta, join Event) RoomState
}

// RoomState is a room's game state machine. The engine calls every
// method with the room's lock held, so implementations need no locking
// of their own and must not block.
type RoomState interface {
	// Join seats a player. A returned error rejects admission and is
	// reported to the joining connection as a join_error.
	Join(pid, name string, join Event) ([]Effect, error)
	// Handle applies one inbound event. Unknown, out-of-turn and
	// out-of-phase events return nil effects; the engine sends no
	// error frame for them.
	Handle(pid string, evt Event) []Effect
	// Leave removes a player, running any "actor departed" transition
	// (host handoff, round restart) so the room never waits on an
	// absent pid. The engine has already dropped the seat.
	Leave(pid string) []Effect
	// Tick fires once per countdown second, counting down to zero. The
	// zero tick is the round's fallback action and fires exactly once.
	Tick(remaining int) []Effect
	// Timeout fires when a one-shot timer expires.
	Timeout() []Effect
	// Summary reports the game-specific fields of the room discovery
	// listing.
	Summary() map[string]any
}

// Effect is one engine action requested by a rule module. Effects are
// executed in order, under the same room lock as the transition that
// produced them, so every payload reflects a single consistent read of
// room state.
type Effect interface{ effect() }

// Broadcast sends one payload, serialized once, to every live
// connection in the room.
type Broadcast struct{ Payload any }

// BroadcastEach sends View(pid) to each connection. Returning ok=false
// skips that player. Used for asymmetric information.
type BroadcastEach struct {
	View func(pid string) (payload any, ok bool)
}

// Unicast sends a payload to a single player, if connected.
type Unicast struct {
	PID     string
	Payload any
}

// StartCountdown arms the room's timer slot with a ticking countdown.
// Any previously armed timer is cancelled first.
type StartCountdown struct{ Seconds int }

// StartTimer arms the slot with a one-shot delay.
type StartTimer struct{ After time.Duration }

// CancelTimer clears the slot. Safe when nothing is armed.
type CancelTimer struct{}

// DestroyRoom removes the room from the registry, cancelling any armed
// timer. CloseConns also closes every remaining connection. Effects
// after a DestroyRoom are not executed.
type DestroyRoom struct{ CloseConns bool }

func (Broadcast) effect()      {}
func (BroadcastEach) effect()  {}
func (Unicast) effect()        {}
func (StartCountdown) effect() {}
func (StartTimer) effect()     {}
func (CancelTimer) effect()    {}
func (DestroyRoom) effect()    {}
