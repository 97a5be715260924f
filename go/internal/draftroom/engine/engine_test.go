package engine

import (
	"fmt"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/blitzdraft/go/internal/draftroom/events"
	"github.com/mcdev12/blitzdraft/go/internal/models"
)

func testParticipants() []Participant {
	ps := make([]Participant, RoomCapacity)
	for i := range ps {
		ps[i] = Participant{
			ID:          fmt.Sprintf("p%d", i),
			DisplayName: fmt.Sprintf("Player %d", i),
			IsHuman:     true,
		}
	}
	return ps
}

// testBoard builds a deterministic full-size board: five price rows of
// QB/RB/WR/TE plus a five-cell FLEX row, every player unique.
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

	flexOrigins := []models.Position{models.PositionQB, models.PositionRB, models.PositionWR, models.PositionTE, models.PositionRB}
	var flexRow []models.BoardCell
	for i, pos := range flexOrigins {
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

func newTestEngine() *Engine {
	return New(clockwork.NewFakeClock())
}

func activeState(t *testing.T, e *Engine, contestType models.ContestType) *models.DraftState {
	t.Helper()
	s := e.NewState("room-1", "contest-1", contestType, testParticipants(), testBoard())

	_, err := e.StartCountdown(s)
	require.NoError(t, err)
	for i := 0; i < CountdownSeconds; i++ {
		_, err = e.CountdownTick(s)
		require.NoError(t, err)
	}
	require.Equal(t, models.DraftStatusActive, s.Status)
	return s
}

func TestNewState(t *testing.T) {
	e := newTestEngine()
	participants := testParticipants()
	participants[4].IsHuman = false

	s := e.NewState("room-1", "contest-1", models.ContestTypeCash, participants, testBoard())

	assert.Equal(t, models.DraftStatusWaiting, s.Status)
	assert.Len(t, s.Teams, 5)
	assert.Len(t, s.Order, 25)
	for i, team := range s.Teams {
		assert.Equal(t, i, team.TeamIndex)
		assert.Equal(t, models.StartingBudget, team.Budget)
		assert.Zero(t, team.Bonus)
		assert.True(t, team.AutoPickEnabled)
		assert.NotEmpty(t, team.Color)
	}
	// Humans start disconnected, bots are always live.
	assert.False(t, s.Teams[0].Connected)
	assert.True(t, s.Teams[4].Connected)
}

func TestCountdownFlow(t *testing.T) {
	e := newTestEngine()
	s := e.NewState("room-1", "contest-1", models.ContestTypeCash, testParticipants(), testBoard())

	evts, err := e.StartCountdown(s)
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, events.TypeCountdownStarted, evts[0].Type)
	assert.Equal(t, models.DraftStatusCountdown, s.Status)

	for want := CountdownSeconds - 1; want > 0; want-- {
		evts, err = e.CountdownTick(s)
		require.NoError(t, err)
		require.Len(t, evts, 1)
		assert.Equal(t, events.TypeCountdownUpdate, evts[0].Type)
		assert.Equal(t, want, evts[0].Data.(events.CountdownUpdatePayload).Seconds)
	}

	evts, err = e.CountdownTick(s)
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, events.TypeDraftStarted, evts[0].Type)
	assert.Equal(t, models.DraftStatusActive, s.Status)
	assert.Equal(t, 0, s.CurrentTurn)
	assert.Equal(t, TurnSeconds, s.TimeRemaining)

	// A second countdown start is an invariant breach, not a client error.
	_, err = e.StartCountdown(s)
	var serr *StateError
	require.ErrorAs(t, err, &serr)
}

func TestSubmitPick(t *testing.T) {
	e := newTestEngine()
	s := activeState(t, e, models.ContestTypeCash)

	// Team 0 takes the price-5 QB at (0,0).
	evts, err := e.SubmitPick(s, "p0", 0, 0, "")
	require.NoError(t, err)

	team := s.Teams[0]
	assert.Equal(t, 10, team.Budget)
	assert.Zero(t, team.Bonus)
	require.NotNil(t, team.Roster.QB)
	assert.Equal(t, "QB-5", team.Roster.QB.Name)

	cell := s.Board.Cell(0, 0)
	assert.True(t, cell.Drafted)
	require.NotNil(t, cell.DraftedBy)
	assert.Equal(t, 0, *cell.DraftedBy)

	assert.Equal(t, 1, s.CurrentTurn)
	assert.Equal(t, TurnSeconds, s.TimeRemaining)
	require.Len(t, s.Picks, 1)
	assert.Equal(t, 0, s.Picks[0].PickNumber)
	assert.False(t, s.Picks[0].Skipped)

	require.Len(t, evts, 1)
	assert.Equal(t, events.TypePickMade, evts[0].Type)
	payload := evts[0].Data.(events.PickMadePayload)
	assert.Equal(t, 1, payload.NextTurn)
	assert.Equal(t, TurnSeconds, payload.TimeRemaining)
}

func TestSubmitPickValidation(t *testing.T) {
	e := newTestEngine()
	s := activeState(t, e, models.ContestTypeCash)

	assertCode := func(err error, code Code) {
		t.Helper()
		verr, ok := AsValidation(err)
		require.True(t, ok, "expected validation error, got %v", err)
		assert.Equal(t, code, verr.Code)
	}

	// Wrong participant.
	_, err := e.SubmitPick(s, "p3", 0, 0, "")
	assertCode(err, CodeNotYourTurn)

	// Bogus cell.
	_, err = e.SubmitPick(s, "p0", 9, 9, "")
	assertCode(err, CodeCellNotFound)

	// Slot that cannot take the player.
	_, err = e.SubmitPick(s, "p0", 0, 0, models.SlotRB)
	assertCode(err, CodeNoAvailableSlot)

	// Price above spendable budget.
	s.Teams[0].Budget = 4
	s.Teams[0].Bonus = 0
	_, err = e.SubmitPick(s, "p0", 0, 0, "")
	assertCode(err, CodeInsufficientBudget)

	// Bonus counts toward spendable budget.
	s.Teams[0].Bonus = 1
	_, err = e.SubmitPick(s, "p0", 0, 0, "")
	require.NoError(t, err)

	// Already-drafted cell rejected for the next team.
	_, err = e.SubmitPick(s, "p1", 0, 0, "")
	assertCode(err, CodeAlreadyDrafted)

	// Validation failures left no trace.
	require.Len(t, s.Picks, 1)
	assert.Equal(t, 1, s.CurrentTurn)
}

func TestSubmitPickRejectedWhenNotActive(t *testing.T) {
	e := newTestEngine()
	s := e.NewState("room-1", "contest-1", models.ContestTypeCash, testParticipants(), testBoard())

	_, err := e.SubmitPick(s, "p0", 0, 0, "")
	verr, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, CodeDraftNotActive, verr.Code)
}

func TestSkipTurnCreditsOtherTeams(t *testing.T) {
	e := newTestEngine()
	s := activeState(t, e, models.ContestTypeCash)

	evts, err := e.SkipTurn(s, "", ReasonNoValidPicks, true)
	require.NoError(t, err)

	require.Len(t, s.Picks, 1)
	assert.True(t, s.Picks[0].Skipped)
	assert.Equal(t, ReasonNoValidPicks, s.Picks[0].Reason)
	assert.Nil(t, s.Picks[0].Player)

	assert.Equal(t, models.StartingBudget, s.Teams[0].Budget)
	for _, team := range s.Teams[1:] {
		assert.Equal(t, models.StartingBudget+1, team.Budget)
	}

	assert.Equal(t, 1, s.CurrentTurn)
	require.Len(t, evts, 1)
	assert.Equal(t, events.TypeTurnSkipped, evts[0].Type)
}

func TestManualSkipRequiresTurnOwnership(t *testing.T) {
	e := newTestEngine()
	s := activeState(t, e, models.ContestTypeCash)

	_, err := e.SkipTurn(s, "p2", "manual", false)
	verr, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, CodeNotYourTurn, verr.Code)

	_, err = e.SkipTurn(s, "p0", "manual", false)
	require.NoError(t, err)
}

func TestKingpinStackBonusAwardedOnPick(t *testing.T) {
	e := newTestEngine()
	s := activeState(t, e, models.ContestTypeKingpin)

	// Put a same-team QB and WR on the board.
	s.Board[0][0].Player.Team = "KC" // QB price 5
	s.Board[4][2].Player.Team = "KC" // WR price 1

	_, err := e.SubmitPick(s, "p0", 0, 0, "")
	require.NoError(t, err)
	assert.Zero(t, s.Teams[0].Bonus)

	// Skip everyone else until the snake comes back to team 0 (turn 9).
	for s.CurrentTurn != 9 {
		_, err = e.SkipTurn(s, "", ReasonTimeout, true)
		require.NoError(t, err)
	}

	_, err = e.SubmitPick(s, "p0", 4, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Teams[0].Bonus)
}

func TestCashContestNeverAwardsBonus(t *testing.T) {
	e := newTestEngine()
	s := activeState(t, e, models.ContestTypeCash)

	s.Board[0][0].Player.Team = "KC"
	s.Board[4][2].Player.Team = "KC"

	_, err := e.SubmitPick(s, "p0", 0, 0, "")
	require.NoError(t, err)
	for s.CurrentTurn != 9 {
		_, err = e.SkipTurn(s, "", ReasonTimeout, true)
		require.NoError(t, err)
	}
	_, err = e.SubmitPick(s, "p0", 4, 2, "")
	require.NoError(t, err)

	assert.Zero(t, s.Teams[0].Bonus)
}

func TestTimerTick(t *testing.T) {
	e := newTestEngine()
	s := activeState(t, e, models.ContestTypeCash)

	evts, expired, err := e.Tick(s)
	require.NoError(t, err)
	assert.False(t, expired)
	require.Len(t, evts, 1)
	assert.Equal(t, events.TypeTimerUpdate, evts[0].Type)
	assert.Equal(t, TurnSeconds-1, s.TimeRemaining)

	s.TimeRemaining = 1
	evts, expired, err = e.Tick(s)
	require.NoError(t, err)
	assert.True(t, expired)
	assert.Empty(t, evts)
}

func TestDraftCompletesAfterFinalTurn(t *testing.T) {
	e := newTestEngine()
	s := activeState(t, e, models.ContestTypeCash)

	var lastEvts []events.Event
	for s.Status == models.DraftStatusActive {
		var err error
		lastEvts, err = e.SkipTurn(s, "", ReasonTimeout, true)
		require.NoError(t, err)
	}

	assert.Equal(t, models.DraftStatusCompleted, s.Status)
	assert.Len(t, s.Picks, 25)
	require.NotNil(t, s.CompletedAt)
	assert.Nil(t, s.CurrentTeam())

	require.Len(t, lastEvts, 2)
	assert.Equal(t, events.TypeTurnSkipped, lastEvts[0].Type)
	assert.Equal(t, events.TypeDraftCompleted, lastEvts[1].Type)

	// Nothing more can happen.
	_, err := e.SkipTurn(s, "", ReasonTimeout, true)
	verr, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, CodeDraftNotActive, verr.Code)
}
