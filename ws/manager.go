package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"gamehub/metrics"
	"gamehub/tokens"
	"gamehub/util"
)

const maxNameLen = 24

// Manager accepts websocket connections for one game type and routes
// their events through the game's room registry. The registry is
// injected so its lifetime is tied to the server, not the package.
type Manager struct {
	game         Game
	registry     *Registry
	logger       *zap.Logger
	stats        *metrics.Set
	tokenMaker   tokens.Maker
	upgrader     websocket.Upgrader
	tickInterval time.Duration

	mu      sync.RWMutex
	clients map[string]*Client
}

type ManagerOption func(*Manager)

// WithTokenMaker lets connections pre-bind their display name with an
// ephemeral identity token passed as a query parameter.
func WithTokenMaker(maker tokens.Maker) ManagerOption {
	return func(m *Manager) { m.tokenMaker = maker }
}

func WithMetrics(set *metrics.Set) ManagerOption {
	return func(m *Manager) { m.stats = set }
}

func NewManager(game Game, registry *Registry, logger *zap.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		game:     game,
		registry: registry,
		logger:   logger.Named(game.Name()),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the HTML clients are served from arbitrary hosts
			CheckOrigin: func(*http.Request) bool { return true },
		},
		tickInterval: time.Second,
		clients:      make(map[string]*Client),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) GameName() string { return m.game.Name() }

// Registry exposes the injected room table, mainly for wiring gauges.
func (m *Manager) Registry() *Registry { return m.registry }

// ServeWS upgrades the request and starts the connection's pumps.
func (m *Manager) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(conn, m)

	if m.tokenMaker != nil {
		if token := r.URL.Query().Get("token"); token != "" {
			if payload, err := m.tokenMaker.VerifyToken(token); err == nil {
				client.name = payload.Username
			}
		}
	}

	m.addClient(client)
	if m.stats != nil {
		m.stats.Connections.WithLabelValues(m.game.Name()).Inc()
	}
	m.logger.Debug("client connected",
		zap.String("socket", client.SocketID), zap.String("pid", client.PID))

	go client.readMessages()
	go client.writeMessages()
}

func (m *Manager) addClient(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[client.SocketID] = client
}

func (m *Manager) removeClient(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, client.SocketID)
}

// route dispatches one inbound event. Join and leave belong to the
// engine; everything else goes to the room's rule module under the
// room lock.
func (m *Manager) route(evt Event, c *Client) {
	if m.stats != nil {
		m.stats.Events.WithLabelValues(m.game.Name(), evt.Type).Inc()
	}

	switch evt.Type {
	case EventJoin:
		m.handleJoin(evt, c)
		return
	case EventLeave:
		// explicit leave converges with the disconnect path
		_ = c.Close()
		return
	}

	if c.roomID == "" {
		return
	}
	room := m.registry.Get(c.roomID)
	if room == nil {
		// the room was destroyed moments earlier; not an error
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.conns[c.PID] != c {
		return
	}
	m.applyLocked(room, room.state.Handle(c.PID, evt))
}

func (m *Manager) handleJoin(evt Event, c *Client) {
	if c.roomID != "" {
		// one room per connection
		return
	}

	var req JoinRequest
	if err := json.Unmarshal(evt.Raw, &req); err != nil {
		return
	}
	if err := util.Validate.Struct(req); err != nil {
		return
	}

	name := strings.TrimSpace(req.Name)
	if c.name != "" {
		// bound by an identity token at upgrade time
		name = c.name
	}
	if name == "" {
		name = "anon"
	}
	if runes := []rune(name); len(runes) > maxNameLen {
		name = string(runes[:maxNameLen])
	}

	mode := req.Mode
	if mode == "" {
		mode = ModeJoin
	}
	policy := m.game.Policy()

	room, created, err := m.registry.GetOrCreate(req.RoomID, mode, policy, func() *Room {
		room := newRoom(req.RoomID, m.game)
		if policy.Passwords {
			if req.Password != "" {
				if hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost); err == nil {
					room.passwordHash = hash
				}
			}
			room.inviteKey = util.InviteKey()
		}
		room.state = m.game.NewRoom(Meta{
			RoomID:      req.RoomID,
			HasPassword: room.passwordHash != nil,
			InviteKey:   room.inviteKey,
		}, evt)
		return room
	})
	if err != nil {
		c.send(JoinErrorPayload{Type: EventJoinError, Reason: joinErrorReason(err)})
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	// the room may have emptied and been destroyed between the registry
	// lookup and taking its lock
	if !created && m.registry.Get(room.ID) != room {
		c.send(JoinErrorPayload{Type: EventJoinError, Reason: joinErrorReason(ErrRoomNotFound)})
		return
	}

	if err := m.admitLocked(room, policy, created, name, req); err != nil {
		c.send(JoinErrorPayload{Type: EventJoinError, Reason: joinErrorReason(err)})
		m.reapIfEmptyLocked(room)
		return
	}

	room.players[c.PID] = &Player{Name: name, JoinedAt: time.Now()}
	room.conns[c.PID] = c
	c.roomID = room.ID
	c.name = name

	effects, err := room.state.Join(c.PID, name, evt)
	if err != nil {
		delete(room.players, c.PID)
		delete(room.conns, c.PID)
		c.roomID = ""
		c.send(JoinErrorPayload{Type: EventJoinError, Reason: joinErrorReason(err)})
		m.reapIfEmptyLocked(room)
		return
	}

	m.logger.Info("player joined",
		zap.String("room", room.ID), zap.String("pid", c.PID), zap.Bool("created", created))
	m.applyLocked(room, effects)
}

// admitLocked runs the engine-level admission checks: capacity, name
// uniqueness and the room password. Failures leave room state intact.
func (m *Manager) admitLocked(room *Room, policy Policy, created bool, name string, req JoinRequest) error {
	if policy.MaxPlayers > 0 && len(room.players) >= policy.MaxPlayers {
		return ErrRoomFull
	}
	if policy.UniqueNames {
		for _, p := range room.players {
			if strings.EqualFold(p.Name, name) {
				return ErrNameTaken
			}
		}
	}
	if !created && room.passwordHash != nil {
		if req.InviteKey != "" && req.InviteKey == room.inviteKey {
			return nil
		}
		if bcrypt.CompareHashAndPassword(room.passwordHash, []byte(req.Password)) != nil {
			return ErrBadPassword
		}
	}
	return nil
}

// disconnect is the single cleanup routine both abnormal closure and
// explicit leave converge on.
func (m *Manager) disconnect(c *Client) {
	_ = c.Close()
	m.removeClient(c)
	if m.stats != nil {
		m.stats.Connections.WithLabelValues(m.game.Name()).Dec()
	}
	if c.roomID == "" {
		return
	}
	room := m.registry.Get(c.roomID)
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.conns[c.PID] != c {
		// a broadcast pass already pruned this connection, or the pid
		// was reseated; only release the seat if it is still ours
		if _, seated := room.players[c.PID]; !seated {
			return
		}
	}
	delete(room.conns, c.PID)
	delete(room.players, c.PID)

	m.logger.Info("player left", zap.String("room", room.ID), zap.String("pid", c.PID))

	if len(room.conns) == 0 {
		m.destroyLocked(room, false)
		return
	}
	m.applyLocked(room, room.state.Leave(c.PID))
}

// applyLocked executes a transition's effects in order. Caller holds
// room.mu. A DestroyRoom short-circuits the rest of the list; a
// fan-out pass that prunes the last connection also destroys the room.
func (m *Manager) applyLocked(room *Room, effects []Effect) {
	for _, ef := range effects {
		switch e := ef.(type) {
		case Broadcast:
			room.broadcastLocked(e.Payload)
			if m.stats != nil {
				m.stats.Broadcasts.WithLabelValues(m.game.Name()).Inc()
			}
		case BroadcastEach:
			room.broadcastEachLocked(e.View)
			if m.stats != nil {
				m.stats.Broadcasts.WithLabelValues(m.game.Name()).Inc()
			}
		case Unicast:
			room.unicastLocked(e.PID, e.Payload)
		case StartCountdown:
			m.startCountdownLocked(room, e.Seconds)
		case StartTimer:
			m.startTimerLocked(room, e.After)
		case CancelTimer:
			room.stopTimerLocked()
		case DestroyRoom:
			m.destroyLocked(room, e.CloseConns)
			return
		}
	}
	m.reapIfEmptyLocked(room)
}

func (m *Manager) reapIfEmptyLocked(room *Room) {
	if len(room.conns) == 0 && m.registry.Get(room.ID) == room {
		m.destroyLocked(room, false)
	}
}

// destroyLocked removes the room from the registry, cancelling its
// timer synchronously. Idempotent.
func (m *Manager) destroyLocked(room *Room, closeConns bool) {
	room.stopTimerLocked()
	m.registry.Remove(room.ID)
	if closeConns {
		for pid, conn := range room.conns {
			_ = conn.Close()
			delete(room.conns, pid)
		}
	}
	m.logger.Info("room destroyed", zap.String("room", room.ID))
}

// Snapshots lists the manager's live rooms for the discovery endpoint.
func (m *Manager) Snapshots() []map[string]any {
	rooms := m.registry.Rooms()
	out := make([]map[string]any, 0, len(rooms))
	for _, room := range rooms {
		room.mu.Lock()
		row := map[string]any{
			"game":    m.game.Name(),
			"roomId":  room.ID,
			"players": len(room.players),
		}
		for k, v := range room.state.Summary() {
			row[k] = v
		}
		room.mu.Unlock()
		out = append(out, row)
	}
	return out
}
