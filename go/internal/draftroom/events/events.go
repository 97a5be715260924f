package events

// Event types pushed to draft room clients over the websocket.
type Type string

const (
	TypeRoomState        Type = "room-state"
	TypeCountdownStarted Type = "countdown-started"
	TypeCountdownUpdate  Type = "countdown-update"
	TypeDraftStarted     Type = "draft-started"
	TypeDraftStateUpdate Type = "draft-state-update"
	TypePickMade         Type = "pick-made"
	TypeTimerUpdate      Type = "timer-update"
	TypeTurnSkipped      Type = "turn-skipped"
	TypeDraftCompleted   Type = "draft-completed"
	TypeRejoinAvailable  Type = "rejoin-available"
	TypePong             Type = "pong"
	TypeError            Type = "error"
)

// Event is the envelope every server->client message travels in.
type Event struct {
	Type Type `json:"event"`
	Data any  `json:"data,omitempty"`
}

// New wraps a payload in an event envelope.
func New(t Type, data any) Event {
	return Event{Type: t, Data: data}
}
