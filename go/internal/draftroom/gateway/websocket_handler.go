package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/blitzdraft/go/internal/draftroom/engine"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/events"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/room"
	"github.com/mcdev12/blitzdraft/go/internal/models"
)

// Rooms is the slice of the room registry the gateway needs.
type Rooms interface {
	StartDraft(ctx context.Context, req room.StartRequest) (*models.DraftState, error)
	Room(roomID string) (*room.Room, bool)
	ActiveRoomFor(participantID string) (string, bool)
}

// Client actions accepted over the WebSocket.
const (
	actionJoinRoom     = "join-room"
	actionLeaveRoom    = "leave-room"
	actionMakePick     = "make-pick"
	actionSkipTurn     = "skip-turn"
	actionSetAutoPick  = "set-autopick"
	actionRequestState = "request-draft-state"
	actionPing         = "ping"
)

// clientMessage is the envelope every client->server frame travels in.
type clientMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type joinRoomRequest struct {
	RoomID string `json:"room_id"`
}

type makePickRequest struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Slot string `json:"slot,omitempty"`
}

type setAutoPickRequest struct {
	Enabled bool `json:"enabled"`
}

// WebSocketHandler upgrades draft connections and routes client actions
// into room actors.
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	rooms             Rooms
}

// NewWebSocketHandler creates a WebSocket handler.
func NewWebSocketHandler(cm *ConnectionManager, rooms Rooms) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		rooms:             rooms,
	}
}

// HandleDraftConnection handles WebSocket upgrade requests.
func (h *WebSocketHandler) HandleDraftConnection(w http.ResponseWriter, r *http.Request) {
	// In production the participant identity would come from a JWT or
	// session cookie.
	participantID := r.URL.Query().Get("participant_id")
	if participantID == "" {
		http.Error(w, "participant_id is required", http.StatusBadRequest)
		return
	}

	conn, err := h.connectionManager.Upgrade(w, r, participantID, h.handleClientMessage, h.handleClose)
	if err != nil {
		log.Error().
			Err(err).
			Str("participant_id", participantID).
			Msg("failed to upgrade WebSocket connection")
		http.Error(w, "failed to upgrade connection", http.StatusInternalServerError)
		return
	}

	// Tell returning participants they have a live draft to get back to.
	if roomID, ok := h.rooms.ActiveRoomFor(participantID); ok {
		h.sendToConn(conn, events.New(events.TypeRejoinAvailable, events.RejoinAvailablePayload{
			RoomID: roomID,
		}))
	}
}

// handleClientMessage dispatches one inbound frame.
func (h *WebSocketHandler) handleClientMessage(c *Connection, message []byte) {
	var msg clientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		h.sendError(c, "", "BAD_MESSAGE", "message is not valid JSON")
		return
	}

	switch msg.Action {
	case actionJoinRoom:
		h.handleJoinRoom(c, msg.Data)

	case actionLeaveRoom:
		roomID, lastSession := h.connectionManager.LeaveRoom(c)
		if lastSession {
			if rm, ok := h.rooms.Room(roomID); ok {
				rm.Leave(c.ParticipantID)
			}
		}

	case actionMakePick:
		var req makePickRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			h.sendError(c, msg.Action, "BAD_MESSAGE", "invalid make-pick payload")
			return
		}
		if rm, ok := h.roomFor(c, msg.Action); ok {
			rm.MakePick(c.ParticipantID, req.Row, req.Col, models.RosterSlot(req.Slot))
		}

	case actionSkipTurn:
		if rm, ok := h.roomFor(c, msg.Action); ok {
			rm.SkipTurn(c.ParticipantID)
		}

	case actionSetAutoPick:
		var req setAutoPickRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			h.sendError(c, msg.Action, "BAD_MESSAGE", "invalid set-autopick payload")
			return
		}
		if rm, ok := h.roomFor(c, msg.Action); ok {
			rm.SetAutoPick(c.ParticipantID, req.Enabled)
		}

	case actionRequestState:
		if rm, ok := h.roomFor(c, msg.Action); ok {
			rm.RequestState(c.ParticipantID)
		}

	case actionPing:
		h.sendToConn(c, events.New(events.TypePong, nil))

	default:
		h.sendError(c, msg.Action, "UNKNOWN_ACTION", fmt.Sprintf("unknown action %q", msg.Action))
	}
}

func (h *WebSocketHandler) handleJoinRoom(c *Connection, data json.RawMessage) {
	var req joinRoomRequest
	if err := json.Unmarshal(data, &req); err != nil || req.RoomID == "" {
		h.sendError(c, actionJoinRoom, "BAD_MESSAGE", "invalid join-room payload")
		return
	}

	rm, ok := h.rooms.Room(req.RoomID)
	if !ok {
		h.sendError(c, actionJoinRoom, string(engine.CodeRoomNotFound), "no such draft room")
		return
	}

	h.connectionManager.JoinRoom(c, req.RoomID)
	rm.Join(c.ParticipantID)
}

// handleClose fires when a session tears down. Only the participant's last
// session in a room counts as a disconnect; parallel tabs keep them live.
func (h *WebSocketHandler) handleClose(c *Connection, roomID string, lastSession bool) {
	if roomID == "" || !lastSession {
		return
	}
	if rm, ok := h.rooms.Room(roomID); ok {
		rm.Leave(c.ParticipantID)
	}
}

// roomFor resolves the room the connection has joined, reporting an error
// to the client when it has not joined one.
func (h *WebSocketHandler) roomFor(c *Connection, action string) (*room.Room, bool) {
	roomID := c.room()
	if roomID == "" {
		h.sendError(c, action, string(engine.CodeRoomNotFound), "join a room first")
		return nil, false
	}
	rm, ok := h.rooms.Room(roomID)
	if !ok {
		h.sendError(c, action, string(engine.CodeRoomNotFound), "draft room is gone")
		return nil, false
	}
	return rm, true
}

func (h *WebSocketHandler) sendError(c *Connection, action, code, message string) {
	h.sendToConn(c, events.New(events.TypeError, events.ErrorPayload{
		Event:   action,
		Code:    code,
		Message: message,
	}))
}

func (h *WebSocketHandler) sendToConn(c *Connection, evt events.Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(evt.Type)).Msg("failed to marshal event")
		return
	}
	c.trySend(data)
}

// HandleConnectionStats returns statistics about active connections.
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	totalConnections, activeRooms := h.connectionManager.ConnectionStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{
		"total_connections": totalConnections,
		"active_rooms":      activeRooms,
	})
}

// RegisterRoutes registers WebSocket routes with an HTTP mux.
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/draft", h.HandleDraftConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
}
