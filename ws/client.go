package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gamehub/util"
)

var (
	pongWait     = 10 * time.Second
	pingInterval = (pongWait * 9) / 10
	writeWait    = 10 * time.Second
)

const (
	maxMessageSize = 4096
	egressBuffer   = 64
)

// Client wraps one websocket connection. A read pump decodes inbound
// frames and hands them to the manager; a write pump drains the egress
// channel, so frames for a single player are delivered in the order the
// engine enqueued them.
type Client struct {
	// SocketID identifies the transport connection; PID is the player
	// identifier handed out in the join handshake. A reconnect gets a
	// fresh PID.
	SocketID string
	PID      string

	// name and roomID are only written by the read pump (join) and read
	// by engine code running on it, so they need no lock.
	name   string
	roomID string

	manager    *Manager
	connection *websocket.Conn
	egress     chan []byte
	done       chan struct{}
	closeOnce  sync.Once
}

func NewClient(conn *websocket.Conn, m *Manager) *Client {
	return &Client{
		SocketID:   uuid.NewString(),
		PID:        util.RandomHex(3),
		manager:    m,
		connection: conn,
		egress:     make(chan []byte, egressBuffer),
		done:       make(chan struct{}),
	}
}

// TrySend enqueues a frame for delivery. Best-effort: a closed client
// or a full egress buffer reports failure so the dispatcher can prune
// the connection.
func (c *Client) TrySend(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.egress <- data:
		return true
	default:
		return false
	}
}

func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return c.connection.Close()
}

// send serializes and enqueues a payload for this connection alone,
// used for pre-admission replies such as join_error.
func (c *Client) send(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	c.TrySend(data)
}

// readMessages pumps inbound frames until the connection dies, then
// converges on the same cleanup as an explicit leave.
func (c *Client) readMessages() {
	defer c.manager.disconnect(c)

	c.connection.SetReadLimit(maxMessageSize)
	if err := c.connection.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.connection.SetPongHandler(c.pongHandler)

	for {
		_, payload, err := c.connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.manager.logger.Debug("unexpected socket closure",
					zap.String("socket", c.SocketID), zap.Error(err))
			}
			return
		}

		evt, err := ParseEvent(payload)
		if err != nil {
			// malformed frames are dropped, not answered
			continue
		}
		c.manager.route(evt, c)
	}
}

// writeMessages drains the egress channel and keeps the connection
// alive with pings. Exiting closes the connection, which unblocks the
// read pump.
func (c *Client) writeMessages() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.connection.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case data := <-c.egress:
			_ = c.connection.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.connection.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.connection.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.connection.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}

func (c *Client) pongHandler(string) error {
	return c.connection.SetReadDeadline(time.Now().Add(pongWait))
}
