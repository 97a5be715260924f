package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/blitzdraft/go/internal/draftroom/events"
)

// ConnectionManager owns every live WebSocket session and fans draft room
// events out to them. It is the room layer's Broadcaster: events are
// marshaled synchronously inside the broadcast call (while the room actor
// still owns the state they reference) and only the resulting bytes cross
// goroutines.
type ConnectionManager struct {
	mu            sync.RWMutex
	byRoom        map[string]map[*Connection]bool
	byParticipant map[string]map[*Connection]bool

	upgrader websocket.Upgrader
	config   ConnectionConfig
}

// Connection represents one WebSocket session for a participant.
type Connection struct {
	ID            string
	ParticipantID string
	Conn          *websocket.Conn
	Send          chan []byte
	Manager       *ConnectionManager

	ConnectedAt time.Time
	LastPing    time.Time

	mu     sync.Mutex
	roomID string
}

// ConnectionConfig holds configuration for WebSocket connections.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// NewConnectionManager creates a WebSocket connection manager.
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		byRoom:        make(map[string]map[*Connection]bool),
		byParticipant: make(map[string]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config: config,
	}
}

// Upgrade turns an HTTP request into a managed WebSocket session. onMessage
// receives every inbound client frame; onClose fires once when the session
// fully tears down, with the room it was in and whether this was the
// participant's last session there.
func (cm *ConnectionManager) Upgrade(w http.ResponseWriter, r *http.Request, participantID string,
	onMessage func(c *Connection, message []byte), onClose func(c *Connection, roomID string, lastSession bool)) (*Connection, error) {

	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:            uuid.New().String(),
		ParticipantID: participantID,
		Conn:          conn,
		Send:          make(chan []byte, 256),
		Manager:       cm,
		ConnectedAt:   time.Now(),
		LastPing:      time.Now(),
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump(onMessage, onClose)

	log.Info().
		Str("connection_id", connection.ID).
		Str("participant_id", participantID).
		Msg("WebSocket connection established")
	return connection, nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.byParticipant[conn.ParticipantID] == nil {
		cm.byParticipant[conn.ParticipantID] = make(map[*Connection]bool)
	}
	cm.byParticipant[conn.ParticipantID][conn] = true
}

// JoinRoom binds a connection to a room pool for broadcasts. A connection
// moving rooms is detached from its previous pool first.
func (cm *ConnectionManager) JoinRoom(conn *Connection, roomID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if prev := conn.room(); prev != "" && prev != roomID {
		cm.removeFromRoomLocked(conn, prev)
	}
	conn.setRoom(roomID)
	if cm.byRoom[roomID] == nil {
		cm.byRoom[roomID] = make(map[*Connection]bool)
	}
	cm.byRoom[roomID][conn] = true
}

// LeaveRoom detaches a connection from its room pool. Reports whether the
// participant has no sessions left in that room, meaning they are now truly
// disconnected from the draft.
func (cm *ConnectionManager) LeaveRoom(conn *Connection) (roomID string, lastSession bool) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	roomID = conn.room()
	if roomID == "" {
		return "", false
	}
	cm.removeFromRoomLocked(conn, roomID)
	conn.setRoom("")
	return roomID, !cm.participantInRoomLocked(conn.ParticipantID, roomID)
}

func (cm *ConnectionManager) removeFromRoomLocked(conn *Connection, roomID string) {
	if conns, ok := cm.byRoom[roomID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(cm.byRoom, roomID)
		}
	}
}

func (cm *ConnectionManager) participantInRoomLocked(participantID, roomID string) bool {
	for conn := range cm.byRoom[roomID] {
		if conn.ParticipantID == participantID {
			return true
		}
	}
	return false
}

// unregisterConnection removes a connection entirely. Reports the room the
// connection belonged to and whether the participant has no sessions left
// in it.
func (cm *ConnectionManager) unregisterConnection(conn *Connection) (roomID string, lastSession bool) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if conns, ok := cm.byParticipant[conn.ParticipantID]; ok {
		if _, ok := conns[conn]; ok {
			delete(conns, conn)
			close(conn.Send)
			if len(conns) == 0 {
				delete(cm.byParticipant, conn.ParticipantID)
			}
		} else {
			return "", false
		}
	}

	roomID = conn.room()
	if roomID != "" {
		cm.removeFromRoomLocked(conn, roomID)
		lastSession = !cm.participantInRoomLocked(conn.ParticipantID, roomID)
	}

	log.Info().
		Str("connection_id", conn.ID).
		Str("participant_id", conn.ParticipantID).
		Msg("connection unregistered")
	return roomID, lastSession
}

// BroadcastToRoom sends events to every session in the room. Called from
// the room actor goroutine; marshaling happens here, before returning, so
// the payloads may safely reference live draft state.
func (cm *ConnectionManager) BroadcastToRoom(roomID string, evts []events.Event) {
	frames := marshalEvents(evts)
	if len(frames) == 0 {
		return
	}

	cm.mu.RLock()
	targets := make([]*Connection, 0, len(cm.byRoom[roomID]))
	for conn := range cm.byRoom[roomID] {
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	for _, conn := range targets {
		for _, frame := range frames {
			conn.trySend(frame)
		}
	}
}

// SendToParticipant sends events to every session of one participant. Same
// synchronous-marshal contract as BroadcastToRoom.
func (cm *ConnectionManager) SendToParticipant(participantID string, evts []events.Event) {
	frames := marshalEvents(evts)
	if len(frames) == 0 {
		return
	}

	cm.mu.RLock()
	targets := make([]*Connection, 0, len(cm.byParticipant[participantID]))
	for conn := range cm.byParticipant[participantID] {
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	for _, conn := range targets {
		for _, frame := range frames {
			conn.trySend(frame)
		}
	}
}

// ConnectionStats returns counts of active sessions and rooms.
func (cm *ConnectionManager) ConnectionStats() (totalConnections, activeRooms int) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	for _, conns := range cm.byParticipant {
		totalConnections += len(conns)
	}
	return totalConnections, len(cm.byRoom)
}

func marshalEvents(evts []events.Event) [][]byte {
	frames := make([][]byte, 0, len(evts))
	for _, evt := range evts {
		data, err := json.Marshal(evt)
		if err != nil {
			log.Error().Err(err).Str("event_type", string(evt.Type)).Msg("failed to marshal event")
			continue
		}
		frames = append(frames, data)
	}
	return frames
}

func (c *Connection) room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID
}

func (c *Connection) setRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
}

// trySend queues a frame without blocking. A full buffer means the client
// stopped draining; the connection is closed and its readPump tears the
// session down.
func (c *Connection) trySend(frame []byte) {
	select {
	case c.Send <- frame:
	default:
		log.Warn().
			Str("connection_id", c.ID).
			Str("participant_id", c.ParticipantID).
			Msg("connection send buffer full, closing connection")
		c.Conn.Close()
	}
}

// writePump handles sending messages to the WebSocket connection.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			c.LastPing = time.Now()
		}
	}
}

// readPump handles reading messages from the WebSocket connection.
func (c *Connection) readPump(onMessage func(c *Connection, message []byte), onClose func(c *Connection, roomID string, lastSession bool)) {
	defer func() {
		roomID, lastSession := c.Manager.unregisterConnection(c)
		c.Conn.Close()
		if onClose != nil {
			onClose(c, roomID, lastSession)
		}
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.LastPing = time.Now()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}
		if onMessage != nil {
			onMessage(c, message)
		}
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
