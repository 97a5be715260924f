package engine

import (
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/events"
	"github.com/mcdev12/blitzdraft/go/internal/models"
)

const (
	// Rounds is the number of draft rounds; one per roster slot.
	Rounds = 5
	// RoomCapacity is the number of seats in a draft room.
	RoomCapacity = 5
	// TurnSeconds is the per-turn pick timer.
	TurnSeconds = 30
	// CountdownSeconds is the pre-draft countdown once a room fills.
	CountdownSeconds = 5

	// ReasonTimeout marks a turn skipped because the timer expired with
	// auto-pick disabled.
	ReasonTimeout = "timeout"
	// ReasonNoValidPicks marks a turn skipped because no affordable,
	// slot-compatible player remained.
	ReasonNoValidPicks = "no_valid_picks"
)

var teamColors = []string{"Green", "Red", "Blue", "Yellow", "Purple"}

// Participant is one seat assignment handed to the engine when a room fills.
type Participant struct {
	ID          string
	DisplayName string
	IsHuman     bool
}

// Engine applies validated turn operations to a single DraftState. It owns
// all mutation; callers must serialize calls per room (the room actor does
// this). Every operation returns the outbound events the mutation produced.
type Engine struct {
	clock clockwork.Clock
}

// New creates an engine. Pass a fake clock in tests.
func New(clock clockwork.Clock) *Engine {
	return &Engine{clock: clock}
}

// NewState builds the authoritative state for a freshly filled room. The
// snake order is generated here and never changes afterwards.
func (e *Engine) NewState(roomID, contestID string, contestType models.ContestType, participants []Participant, b models.Board) *models.DraftState {
	teams := make([]*models.Team, len(participants))
	for i, p := range participants {
		teams[i] = &models.Team{
			TeamIndex:       i,
			ParticipantID:   p.ID,
			DisplayName:     p.DisplayName,
			Color:           teamColors[i%len(teamColors)],
			IsHuman:         p.IsHuman,
			AutoPickEnabled: true,
			Budget:          models.StartingBudget,
			Connected:       !p.IsHuman, // bots are always "connected"
		}
	}

	return &models.DraftState{
		RoomID:      roomID,
		ContestID:   contestID,
		ContestType: contestType,
		Status:      models.DraftStatusWaiting,
		Board:       b,
		Order:       SnakeOrder(len(participants), Rounds),
		Teams:       teams,
		Picks:       make([]models.Pick, 0, len(participants)*Rounds),
	}
}

// StartCountdown moves the room from waiting to countdown. Valid exactly
// once, from waiting only.
func (e *Engine) StartCountdown(s *models.DraftState) ([]events.Event, error) {
	if s.Status != models.DraftStatusWaiting {
		return nil, newStateError("countdown requested in status %s", s.Status)
	}
	secs := CountdownSeconds
	s.Status = models.DraftStatusCountdown
	s.CountdownTime = &secs

	return []events.Event{events.New(events.TypeCountdownStarted, events.CountdownStartedPayload{
		Seconds: secs,
		Order:   s.Order,
		Teams:   s.Teams,
	})}, nil
}

// CountdownTick advances the pre-draft countdown by one second. When it
// reaches zero the draft goes active and the first turn timer starts.
func (e *Engine) CountdownTick(s *models.DraftState) ([]events.Event, error) {
	if s.Status != models.DraftStatusCountdown || s.CountdownTime == nil {
		return nil, newStateError("countdown tick in status %s", s.Status)
	}
	*s.CountdownTime--
	if *s.CountdownTime > 0 {
		return []events.Event{events.New(events.TypeCountdownUpdate, events.CountdownUpdatePayload{
			Seconds: *s.CountdownTime,
		})}, nil
	}
	return e.startActive(s)
}

// startActive begins the draft proper: turn zero, full turn timer.
func (e *Engine) startActive(s *models.DraftState) ([]events.Event, error) {
	if s.Status != models.DraftStatusCountdown {
		return nil, newStateError("draft start requested in status %s", s.Status)
	}
	s.Status = models.DraftStatusActive
	s.CountdownTime = nil
	s.CurrentTurn = 0
	s.TimeRemaining = TurnSeconds
	s.StartedAt = e.clock.Now()

	return []events.Event{events.New(events.TypeDraftStarted, events.DraftStartedPayload{
		Board: s.Board,
		Order: s.Order,
		Teams: s.Teams,
	})}, nil
}

// Tick advances the turn timer by one second. expired=true means the room
// must resolve the turn through auto-pick or a system skip; Tick itself
// never resolves it.
func (e *Engine) Tick(s *models.DraftState) (evts []events.Event, expired bool, err error) {
	if s.Status != models.DraftStatusActive {
		return nil, false, newStateError("timer tick in status %s", s.Status)
	}
	s.TimeRemaining--
	if s.TimeRemaining > 0 {
		return []events.Event{events.New(events.TypeTimerUpdate, events.TimerUpdatePayload{
			Seconds: s.TimeRemaining,
		})}, false, nil
	}
	return nil, true, nil
}

// SubmitPick validates and applies a pick for the requesting participant.
// Exactly one SubmitPick or SkipTurn succeeds per turn; validation failures
// leave the state untouched.
func (e *Engine) SubmitPick(s *models.DraftState, participantID string, row, col int, slot models.RosterSlot) ([]events.Event, error) {
	team, err := e.currentTeamFor(s, participantID, false)
	if err != nil {
		return nil, err
	}

	c := s.Board.Cell(row, col)
	if c == nil {
		return nil, NewValidationError(CodeCellNotFound, "no board cell at row %d col %d", row, col)
	}
	if c.Drafted {
		return nil, NewValidationError(CodeAlreadyDrafted, "%s has already been drafted", c.Player.Name)
	}

	available := team.AvailableSlots(c.Player)
	if len(available) == 0 {
		return nil, NewValidationError(CodeNoAvailableSlot, "no open roster slot for %s", c.Player.EffectivePosition())
	}
	if slot == "" {
		slot = available[0]
	} else if !slotIn(available, slot) {
		return nil, NewValidationError(CodeNoAvailableSlot, "slot %s is not open for %s", slot, c.Player.EffectivePosition())
	}

	if c.Player.Price > team.SpendableBudget() {
		return nil, NewValidationError(CodeInsufficientBudget,
			"price %d exceeds budget %d + bonus %d", c.Player.Price, team.Budget, team.Bonus)
	}

	// All validation passed; mutate. The cell flips drafted exactly once.
	idx := team.TeamIndex
	c.Drafted = true
	c.DraftedBy = &idx

	earned := 0
	if s.ContestType.IsStacking() {
		earned = KingpinBonus(team.Roster.Players(), c.Player)
	}
	team.Roster.Set(slot, c.Player)
	team.Budget -= c.Player.Price
	team.Bonus += earned

	player := c.Player
	pick := models.Pick{
		TeamIndex:  idx,
		PickNumber: s.CurrentTurn,
		Player:     &player,
		Slot:       slot,
		Row:        row,
		Col:        col,
		Timestamp:  e.clock.Now(),
	}
	s.Picks = append(s.Picks, pick)

	completed := e.advanceTurn(s)
	evts := []events.Event{events.New(events.TypePickMade, events.PickMadePayload{
		Pick:          pick,
		NextTurn:      s.CurrentTurn,
		TimeRemaining: s.TimeRemaining,
		Teams:         s.Teams,
	})}
	if completed {
		evts = append(evts, e.completedEvent(s))
	}
	return evts, nil
}

// SkipTurn resolves the current turn without a pick. Manual skips must come
// from the current team; system skips (timeout, no valid picks) bypass the
// ownership check. Every other team's budget is credited +1 as soft
// compensation for the wasted round.
func (e *Engine) SkipTurn(s *models.DraftState, participantID, reason string, system bool) ([]events.Event, error) {
	team, err := e.currentTeamFor(s, participantID, system)
	if err != nil {
		return nil, err
	}

	pick := models.Pick{
		TeamIndex:  team.TeamIndex,
		PickNumber: s.CurrentTurn,
		Timestamp:  e.clock.Now(),
		Skipped:    true,
		Reason:     reason,
	}
	s.Picks = append(s.Picks, pick)

	for _, t := range s.Teams {
		if t.TeamIndex != team.TeamIndex {
			t.Budget++
		}
	}

	completed := e.advanceTurn(s)
	evts := []events.Event{events.New(events.TypeTurnSkipped, events.TurnSkippedPayload{
		Pick:          pick,
		NextTurn:      s.CurrentTurn,
		Reason:        reason,
		TimeRemaining: s.TimeRemaining,
		Teams:         s.Teams,
	})}
	if completed {
		evts = append(evts, e.completedEvent(s))
	}
	return evts, nil
}

// currentTeamFor resolves the team whose turn it is and, unless the call is
// system-initiated, enforces that the requester owns it. Turn ownership is
// decided here and nowhere else.
func (e *Engine) currentTeamFor(s *models.DraftState, participantID string, system bool) (*models.Team, error) {
	if s.Status != models.DraftStatusActive {
		return nil, NewValidationError(CodeDraftNotActive, "draft is %s", s.Status)
	}
	if s.CurrentTurn >= len(s.Order) {
		return nil, newStateError("turn pointer %d past order length %d", s.CurrentTurn, len(s.Order))
	}
	team := s.Teams[s.Order[s.CurrentTurn]]
	if !system && team.ParticipantID != participantID {
		return nil, NewValidationError(CodeNotYourTurn, "it is %s's turn", team.DisplayName)
	}
	return team, nil
}

// advanceTurn moves the turn pointer exactly once and reports completion.
func (e *Engine) advanceTurn(s *models.DraftState) bool {
	s.CurrentTurn++
	if s.CurrentTurn >= len(s.Order) {
		s.Status = models.DraftStatusCompleted
		s.TimeRemaining = 0
		now := e.clock.Now()
		s.CompletedAt = &now
		return true
	}
	s.TimeRemaining = TurnSeconds
	return false
}

func (e *Engine) completedEvent(s *models.DraftState) events.Event {
	return events.New(events.TypeDraftCompleted, events.DraftCompletedPayload{
		RoomID:      s.RoomID,
		ContestID:   s.ContestID,
		Teams:       s.Teams,
		Picks:       s.Picks,
		CompletedAt: *s.CompletedAt,
	})
}

func slotIn(slots []models.RosterSlot, slot models.RosterSlot) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}
