package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 512 * 1024 // 512 KB
)

// Connection is one subscriber to a deal's room. Every frame reaches the
// socket through the send channel and the single writePump goroutine;
// nothing else may write to ws.
type Connection struct {
	dealID int64
	ws     *websocket.Conn
	send   chan []byte
}

// Send queues a message for this connection only. Slow consumers are
// skipped, never blocked on.
func (c *Connection) Send(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub fans chat messages out to every connection subscribed to a deal.
type Hub struct {
	mutex sync.RWMutex
	rooms map[int64]map[*Connection]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[int64]map[*Connection]bool),
	}
}

// Join subscribes the websocket to the deal's room and starts its write
// loop. The returned Connection must be released with Leave.
func (h *Hub) Join(dealID int64, ws *websocket.Conn) *Connection {
	c := &Connection{
		dealID: dealID,
		ws:     ws,
		send:   make(chan []byte, 64),
	}

	h.mutex.Lock()
	if h.rooms[dealID] == nil {
		h.rooms[dealID] = make(map[*Connection]bool)
	}
	h.rooms[dealID][c] = true
	h.mutex.Unlock()

	go c.writePump()
	return c
}

func (h *Hub) Leave(c *Connection) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	room, exists := h.rooms[c.dealID]
	if !exists || !room[c] {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.dealID)
	}
	close(c.send)
}

// Broadcast delivers the message to every connection in the deal's room.
// Slow consumers are skipped so one stuck client cannot stall the rest.
func (h *Hub) Broadcast(dealID int64, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for c := range h.rooms[dealID] {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (h *Hub) RoomSize(dealID int64) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.rooms[dealID])
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for dealID, room := range h.rooms {
		for c := range room {
			close(c.send)
		}
		delete(h.rooms, dealID)
	}
}
