package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const lobbyRoom = "lobby"

func gameRoom(id uint) string {
	return fmt.Sprintf("game_%d", id)
}

// client wraps one websocket connection. All writes go through the
// send queue so a single write pump owns the connection's write side.
type client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	closed chan struct{}
	once   sync.Once
}

func newClient(conn *websocket.Conn, queueSize int) *client {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &client{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, queueSize),
		closed: make(chan struct{}),
	}
}

// enqueue hands a frame to the write pump without blocking. A full
// queue means the consumer cannot keep up; it gets dropped rather than
// holding up the room.
func (c *client) enqueue(data []byte) {
	select {
	case <-c.closed:
		return
	default:
	}
	select {
	case c.send <- data:
	default:
		c.close()
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.closed)
	})
}

// writePump drains the send queue onto the connection. On close it
// flushes whatever is already queued, so an error frame enqueued right
// before closing still reaches the client.
func (c *client) writePump(writeWait time.Duration) {
	defer func() {
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}()
	for {
		select {
		case data := <-c.send:
			if !c.write(data, writeWait) {
				return
			}
		case <-c.closed:
			for {
				select {
				case data := <-c.send:
					if !c.write(data, writeWait) {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (c *client) write(data []byte, writeWait time.Duration) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.close()
		return false
	}
	return true
}

// roomHub maps room names to their live members. Rooms exist only
// while they have members; broadcasting to an unknown room is a no-op.
type roomHub struct {
	mu    sync.Mutex
	rooms map[string]map[*client]struct{}
}

func newRoomHub() *roomHub {
	return &roomHub{
		rooms: make(map[string]map[*client]struct{}),
	}
}

func (h *roomHub) Join(room string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.rooms[room]
	if members == nil {
		members = make(map[*client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
}

func (h *roomHub) Leave(room string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.rooms[room]
	if members == nil {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Broadcast delivers a frame to every member of the room. Enqueueing
// happens under the hub lock, so frames submitted to one room keep
// their submission order on every member's queue. Delivery itself is
// best effort.
func (h *roomHub) Broadcast(room string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for member := range h.rooms[room] {
		member.enqueue(data)
	}
}

func (h *roomHub) memberCount(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}
