// Package ws keeps one WebSocket room per goal so a user's other devices see
// task toggles, snapshot refreshes and commitment transitions as they happen.
package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Event types sent over WebSocket
const (
	EventTaskUpdated         = "task_updated"
	EventProgressUpdated     = "progress_updated"
	EventPlanRevised         = "plan_revised"
	EventCommitmentEvaluated = "commitment_evaluated"
)

// Event is the JSON message sent to connected clients
type Event struct {
	Type   string      `json:"type"`
	GoalID string      `json:"goalId"`
	Data   interface{} `json:"data,omitempty"`
}

// Conn wraps a websocket connection with the authenticated user.
type Conn struct {
	conn   *websocket.Conn
	userID uuid.UUID
}

func NewConn(c *websocket.Conn, userID uuid.UUID) *Conn {
	return &Conn{conn: c, userID: userID}
}

// Hub manages WebSocket connections per goal
type Hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*Conn]bool // goalID -> set of connections
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[uuid.UUID]map[*Conn]bool)}
}

// Register adds a connection to a goal room
func (h *Hub) Register(goalID uuid.UUID, conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[goalID] == nil {
		h.rooms[goalID] = make(map[*Conn]bool)
	}
	h.rooms[goalID][conn] = true
	log.Printf("WS register: user %s watching goal %s (total: %d)", conn.userID, goalID, len(h.rooms[goalID]))
}

// Unregister removes a connection from a goal room
func (h *Hub) Unregister(goalID uuid.UUID, conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[goalID]; ok {
		delete(conns, conn)
		log.Printf("WS unregister: user %s left goal %s (remaining: %d)", conn.userID, goalID, len(conns))
		if len(conns) == 0 {
			delete(h.rooms, goalID)
		}
	}
}

// Broadcast sends an event to every connection watching a goal.
func (h *Hub) Broadcast(goalID uuid.UUID, eventType string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.rooms[goalID]
	if !ok {
		return
	}

	msg, err := json.Marshal(Event{Type: eventType, GoalID: goalID.String(), Data: data})
	if err != nil {
		log.Printf("WS broadcast marshal error: %v", err)
		return
	}

	for c := range conns {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("WS write error: %v", err)
		}
	}
}
