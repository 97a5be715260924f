package models

import "time"

// ContestType defines the scoring category of a contest.
type ContestType string

const (
	ContestTypeCash     ContestType = "cash"
	ContestTypeKingpin  ContestType = "kingpin"
	ContestTypeFiresale ContestType = "firesale"
)

// IsStacking reports whether the contest type awards kingpin/stack bonuses.
func (c ContestType) IsStacking() bool {
	return c == ContestTypeKingpin || c == ContestTypeFiresale
}

// DraftStatus defines the lifecycle state of a draft room.
type DraftStatus string

const (
	DraftStatusWaiting   DraftStatus = "waiting"
	DraftStatusCountdown DraftStatus = "countdown"
	DraftStatusActive    DraftStatus = "active"
	DraftStatusCompleted DraftStatus = "completed"
)

// Pick is one resolved turn: either a drafted player or a skip, never both.
// The picks slice is append-only with strictly increasing PickNumber.
type Pick struct {
	TeamIndex  int        `json:"team_index"`
	PickNumber int        `json:"pick_number"` // 0-based index into the draft order
	Player     *Player    `json:"player,omitempty"`
	Slot       RosterSlot `json:"slot,omitempty"`
	Row        int        `json:"row"`
	Col        int        `json:"col"`
	Timestamp  time.Time  `json:"timestamp"`
	Skipped    bool       `json:"skipped"`
	Reason     string     `json:"reason,omitempty"`
}

// DraftState is the single authoritative state of one draft room. It is
// owned and mutated exclusively by the turn engine; everything else gets
// read-only snapshots.
type DraftState struct {
	RoomID        string      `json:"room_id"`
	ContestID     string      `json:"contest_id"`
	ContestType   ContestType `json:"contest_type"`
	Status        DraftStatus `json:"status"`
	Board         Board       `json:"board"`
	Order         []int       `json:"order"`
	Teams         []*Team     `json:"teams"`
	Picks         []Pick      `json:"picks"`
	CurrentTurn   int         `json:"current_turn"`
	TimeRemaining int         `json:"time_remaining"`
	CountdownTime *int        `json:"countdown_time,omitempty"`
	StartedAt     time.Time   `json:"started_at"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty"`
}

// CurrentTeam returns the team whose turn it is, or nil when the draft is
// not active or the order is exhausted.
func (s *DraftState) CurrentTeam() *Team {
	if s.Status != DraftStatusActive {
		return nil
	}
	if s.CurrentTurn < 0 || s.CurrentTurn >= len(s.Order) {
		return nil
	}
	return s.Teams[s.Order[s.CurrentTurn]]
}

// Clone returns a deep enough copy for read-only consumers: board cells,
// team structs, order and picks are copied; roster player pointers are
// shared but immutable once set.
func (s *DraftState) Clone() *DraftState {
	c := *s
	c.Board = s.Board.Clone()
	c.Teams = make([]*Team, len(s.Teams))
	for i, t := range s.Teams {
		tc := *t
		c.Teams[i] = &tc
	}
	c.Order = append([]int(nil), s.Order...)
	c.Picks = append([]Pick(nil), s.Picks...)
	if s.CountdownTime != nil {
		v := *s.CountdownTime
		c.CountdownTime = &v
	}
	if s.CompletedAt != nil {
		v := *s.CompletedAt
		c.CompletedAt = &v
	}
	return &c
}

// TeamByParticipant returns the team seat owned by the given participant.
func (s *DraftState) TeamByParticipant(participantID string) *Team {
	for _, t := range s.Teams {
		if t.ParticipantID == participantID {
			return t
		}
	}
	return nil
}
