package ws

import "time"

// timerHandle identifies one armed timer slot. Identity is the guard:
// a firing goroutine only acts while its handle is still the one stored
// in the room, so a cancel-then-reschedule can never let a stale fire
// through.
type timerHandle struct {
	stop chan struct{}
}

// startCountdownLocked arms the slot with a countdown that ticks once
// per tick interval down to zero. Caller holds room.mu. Any armed timer
// is cancelled first, so the slot holds at most one live timer.
func (m *Manager) startCountdownLocked(room *Room, seconds int) {
	room.stopTimerLocked()
	h := &timerHandle{stop: make(chan struct{})}
	room.timer = h
	go m.runCountdown(room.ID, h, seconds)
}

// startTimerLocked arms the slot with a one-shot delay.
func (m *Manager) startTimerLocked(room *Room, after time.Duration) {
	room.stopTimerLocked()
	h := &timerHandle{stop: make(chan struct{})}
	room.timer = h
	go m.runTimer(room.ID, h, after)
}

func (m *Manager) runCountdown(roomID string, h *timerHandle, seconds int) {
	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()
	for remaining := seconds - 1; remaining >= 0; remaining-- {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}
		if !m.fire(roomID, h, func(state RoomState) []Effect {
			return state.Tick(remaining)
		}, remaining == 0) {
			return
		}
	}
}

func (m *Manager) runTimer(roomID string, h *timerHandle, after time.Duration) {
	t := time.NewTimer(after)
	defer t.Stop()
	select {
	case <-h.stop:
		return
	case <-t.C:
	}
	m.fire(roomID, h, func(state RoomState) []Effect {
		return state.Timeout()
	}, true)
}

// fire runs one timer callback. The room is re-fetched from the
// registry (it may have been destroyed) and the handle compared against
// the slot (it may have been superseded) before any state is touched;
// either mismatch makes the fire a no-op. final clears the slot before
// the callback runs so the callback can arm a successor.
func (m *Manager) fire(roomID string, h *timerHandle, fn func(RoomState) []Effect, final bool) bool {
	room := m.registry.Get(roomID)
	if room == nil {
		return false
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.timer != h {
		return false
	}
	if final {
		room.timer = nil
	}
	m.applyLocked(room, fn(room.state))
	return room.timer == h
}
