package events

import (
	"time"

	"github.com/mcdev12/blitzdraft/go/internal/models"
)

// RoomStatePayload is broadcast whenever room membership or liveness
// changes.
type RoomStatePayload struct {
	RoomID    string             `json:"room_id"`
	Status    models.DraftStatus `json:"status"`
	Teams     []*models.Team     `json:"teams"`
	Connected int                `json:"connected"`
}

// CountdownStartedPayload is sent once when the room fills and the pre-draft
// countdown begins.
type CountdownStartedPayload struct {
	Seconds int            `json:"seconds"`
	Order   []int          `json:"order"`
	Teams   []*models.Team `json:"teams"`
}

// CountdownUpdatePayload is sent on every countdown second.
type CountdownUpdatePayload struct {
	Seconds int `json:"seconds"`
}

// DraftStartedPayload is sent when the countdown hits zero.
type DraftStartedPayload struct {
	Board models.Board   `json:"board"`
	Order []int          `json:"order"`
	Teams []*models.Team `json:"teams"`
}

// PickMadePayload is broadcast after every successful pick.
type PickMadePayload struct {
	Pick          models.Pick    `json:"pick"`
	NextTurn      int            `json:"next_turn"`
	TimeRemaining int            `json:"time_remaining"`
	Teams         []*models.Team `json:"teams"`
}

// TurnSkippedPayload is broadcast when a turn resolves as a skip.
type TurnSkippedPayload struct {
	Pick          models.Pick    `json:"pick"`
	NextTurn      int            `json:"next_turn"`
	Reason        string         `json:"reason"`
	TimeRemaining int            `json:"time_remaining"`
	Teams         []*models.Team `json:"teams"`
}

// TimerUpdatePayload carries the per-turn countdown.
type TimerUpdatePayload struct {
	Seconds int `json:"seconds"`
}

// DraftCompletedPayload is broadcast once when the last turn resolves. It is
// also the body of the completion message published to the event bus.
type DraftCompletedPayload struct {
	RoomID      string         `json:"room_id"`
	ContestID   string         `json:"contest_id"`
	Teams       []*models.Team `json:"teams"`
	Picks       []models.Pick  `json:"picks"`
	CompletedAt time.Time      `json:"completed_at"`
}

// StateSnapshotPayload is the full current-state snapshot sent to a session
// on (re)join. IsMyTurn is resolved server-side; clients never recompute it.
type StateSnapshotPayload struct {
	State         *models.DraftState `json:"state"`
	DraftPosition int                `json:"draft_position"`
	IsMyTurn      bool               `json:"is_my_turn"`
}

// RejoinAvailablePayload tells a freshly connected participant they have an
// in-progress draft to return to.
type RejoinAvailablePayload struct {
	RoomID string `json:"room_id"`
}

// ErrorPayload is sent to the offending session when an intent is rejected.
type ErrorPayload struct {
	Event   string `json:"event,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
