package server

import (
	"context"
	"sync"
	"time"

	"github.com/castillofj/touchline/pkg/messages"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
)

const (
	clientSendBufferSize = 16
	hubWriteTimeout      = 5 * time.Second
)

// RoomClient is one socket connected to a room.
type RoomClient struct {
	clientID string
	conn     *websocket.Conn
	send     chan []byte
}

// Hub tracks which clients are connected to which room and fans messages
// out to them.
type Hub struct {
	lock  sync.Mutex
	rooms map[string]map[*RoomClient]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*RoomClient]bool),
	}
}

func (h *Hub) add(roomID string, c *RoomClient) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*RoomClient]bool)
	}
	h.rooms[roomID][c] = true
	log.Info().Str("room_id", roomID).Str("client_id", c.clientID).Int("connections", len(h.rooms[roomID])).Msg("client connected")
}

func (h *Hub) remove(roomID string, c *RoomClient) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if clients, ok := h.rooms[roomID]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.rooms, roomID)
		}
	}
	close(c.send)
	log.Info().Str("room_id", roomID).Str("client_id", c.clientID).Msg("client disconnected")
}

// Broadcast sends the message to every client in the room except the
// excluded one. A client whose send buffer is full misses the message;
// the next snapshot fetch catches it up.
func (h *Hub) Broadcast(roomID string, msg *messages.Message, exclude *RoomClient) {
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		log.Error().Err(err).Str("type", msg.Type).Msg("failed to serialize broadcast message")
		return
	}

	// The lock also orders broadcasts against remove closing send channels.
	h.lock.Lock()
	defer h.lock.Unlock()
	for c := range h.rooms[roomID] {
		if c == exclude {
			continue
		}
		select {
		case c.send <- b:
		default:
			log.Warn().Str("room_id", roomID).Str("client_id", c.clientID).Msg("send buffer full, dropping message")
		}
	}
}

// writeLoop drains the client's send channel onto its socket.
func (c *RoomClient) writeLoop(ctx context.Context) {
	for b := range c.send {
		writeCtx, cancel := context.WithTimeout(ctx, hubWriteTimeout)
		err := c.conn.Write(writeCtx, websocket.MessageText, b)
		cancel()
		if err != nil {
			return
		}
	}
}
