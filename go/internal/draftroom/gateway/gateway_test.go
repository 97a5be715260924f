package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/blitzdraft/go/internal/draftroom/autopick"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/bot"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/engine"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/events"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/room"
	"github.com/mcdev12/blitzdraft/go/internal/models"
)

func testBoard() models.Board {
	positions := []models.Position{models.PositionQB, models.PositionRB, models.PositionWR, models.PositionTE}
	prices := []int{5, 4, 3, 2, 1}

	var b models.Board
	for _, price := range prices {
		var row []models.BoardCell
		for j, pos := range positions {
			row = append(row, models.BoardCell{Player: models.Player{
				Name:     fmt.Sprintf("%s-%d", pos, price),
				Team:     fmt.Sprintf("T%d%d", price, j),
				Position: pos,
				Price:    price,
			}})
		}
		b = append(b, row)
	}

	var flexRow []models.BoardCell
	for i, pos := range []models.Position{models.PositionQB, models.PositionRB, models.PositionWR, models.PositionTE, models.PositionRB} {
		flexRow = append(flexRow, models.BoardCell{Player: models.Player{
			Name:             fmt.Sprintf("Flex-%d", i),
			Team:             fmt.Sprintf("F%d", i),
			Position:         models.PositionFlex,
			OriginalPosition: pos,
			Price:            1,
		}})
	}
	return append(b, flexRow)
}

func newTestGateway(t *testing.T) (*WebSocketHandler, *ConnectionManager, *room.Registry) {
	t.Helper()
	fc := clockwork.NewFakeClock()
	cm := NewConnectionManager(DefaultConnectionConfig())
	registry := room.NewRegistry(room.Deps{
		Clock:       fc,
		Broadcaster: cm,
		Strategy:    autopick.NewBestPickStrategy(),
		Bots:        bot.NewController(fc, 0),
	}, room.Config{})
	t.Cleanup(registry.Shutdown)

	return NewWebSocketHandler(cm, registry), cm, registry
}

// newTestConnection registers a session without a real socket; frames land
// in the buffered Send channel.
func newTestConnection(cm *ConnectionManager, participantID string) *Connection {
	conn := &Connection{
		ID:            "conn-" + participantID,
		ParticipantID: participantID,
		Send:          make(chan []byte, 64),
		Manager:       cm,
	}
	cm.registerConnection(conn)
	return conn
}

func awaitEvent(t *testing.T, conn *Connection, want events.Type) events.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case frame := <-conn.Send:
			var evt events.Event
			require.NoError(t, json.Unmarshal(frame, &evt))
			if evt.Type == want {
				return evt
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", want)
		}
	}
}

func message(action string, data any) []byte {
	payload, _ := json.Marshal(data)
	raw, _ := json.Marshal(clientMessage{Action: action, Data: payload})
	return raw
}

func TestPingPong(t *testing.T) {
	h, cm, _ := newTestGateway(t)
	conn := newTestConnection(cm, "p0")

	h.handleClientMessage(conn, []byte(`{"action":"ping"}`))

	awaitEvent(t, conn, events.TypePong)
}

func TestMalformedMessageRejected(t *testing.T) {
	h, cm, _ := newTestGateway(t)
	conn := newTestConnection(cm, "p0")

	h.handleClientMessage(conn, []byte(`not json`))

	evt := awaitEvent(t, conn, events.TypeError)
	var payload events.ErrorPayload
	raw, _ := json.Marshal(evt.Data)
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "BAD_MESSAGE", payload.Code)
}

func TestUnknownActionRejected(t *testing.T) {
	h, cm, _ := newTestGateway(t)
	conn := newTestConnection(cm, "p0")

	h.handleClientMessage(conn, []byte(`{"action":"self-destruct"}`))

	evt := awaitEvent(t, conn, events.TypeError)
	var payload events.ErrorPayload
	raw, _ := json.Marshal(evt.Data)
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "UNKNOWN_ACTION", payload.Code)
}

func TestJoinUnknownRoomRejected(t *testing.T) {
	h, cm, _ := newTestGateway(t)
	conn := newTestConnection(cm, "p0")

	h.handleClientMessage(conn, message(actionJoinRoom, joinRoomRequest{RoomID: "nope"}))

	evt := awaitEvent(t, conn, events.TypeError)
	var payload events.ErrorPayload
	raw, _ := json.Marshal(evt.Data)
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "ROOM_NOT_FOUND", payload.Code)
}

func TestActionBeforeJoinRejected(t *testing.T) {
	h, cm, _ := newTestGateway(t)
	conn := newTestConnection(cm, "p0")

	h.handleClientMessage(conn, message(actionMakePick, makePickRequest{Row: 0, Col: 0}))

	awaitEvent(t, conn, events.TypeError)
}

func TestJoinRoomDeliversSnapshot(t *testing.T) {
	h, cm, registry := newTestGateway(t)

	state, err := registry.StartDraft(context.Background(), room.StartRequest{
		ContestID:   "contest-1",
		ContestType: models.ContestTypeCash,
		Participants: []engine.Participant{
			{ID: "p0", DisplayName: "Player 0", IsHuman: true},
		},
		Board: testBoard(),
	})
	require.NoError(t, err)

	conn := newTestConnection(cm, "p0")
	h.handleClientMessage(conn, message(actionJoinRoom, joinRoomRequest{RoomID: state.RoomID}))

	evt := awaitEvent(t, conn, events.TypeDraftStateUpdate)

	var payload events.StateSnapshotPayload
	raw, _ := json.Marshal(evt.Data)
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, 0, payload.DraftPosition)
	require.NotNil(t, payload.State)
	assert.Equal(t, state.RoomID, payload.State.RoomID)

	// The lone human connecting fills the room and kicks off the countdown.
	awaitEvent(t, conn, events.TypeCountdownStarted)
}

func TestStartDraftEndpoint(t *testing.T) {
	_, _, registry := newTestGateway(t)
	handler := NewDraftHandler(registry, func() (models.Board, error) { return testBoard(), nil })

	body, _ := json.Marshal(startDraftRequest{
		ContestID:   "contest-1",
		ContestType: models.ContestTypeKingpin,
		Participants: []startDraftParticipant{
			{ID: "p0", DisplayName: "Player 0"},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/drafts/start", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.HandleStartDraft(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp startDraftResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RoomID)
	require.NotNil(t, resp.State)
	assert.Len(t, resp.State.Teams, 5)

	// The new room is live in the registry.
	_, ok := registry.Room(resp.RoomID)
	assert.True(t, ok)
}

func TestStartDraftEndpointValidation(t *testing.T) {
	_, _, registry := newTestGateway(t)
	handler := NewDraftHandler(registry, func() (models.Board, error) { return testBoard(), nil })

	cases := []struct {
		name string
		body startDraftRequest
	}{
		{"missing contest id", startDraftRequest{
			ContestType:  models.ContestTypeCash,
			Participants: []startDraftParticipant{{ID: "p0"}},
		}},
		{"bad contest type", startDraftRequest{
			ContestID:    "contest-1",
			ContestType:  "pvp",
			Participants: []startDraftParticipant{{ID: "p0"}},
		}},
		{"no participants", startDraftRequest{
			ContestID:   "contest-1",
			ContestType: models.ContestTypeCash,
		}},
		{"blank participant id", startDraftRequest{
			ContestID:    "contest-1",
			ContestType:  models.ContestTypeCash,
			Participants: []startDraftParticipant{{ID: ""}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.body)
			req := httptest.NewRequest(http.MethodPost, "/api/drafts/start", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			handler.HandleStartDraft(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
