package autopick

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/blitzdraft/go/internal/models"
)

func cell(name, team string, pos models.Position, price int) models.BoardCell {
	return models.BoardCell{Player: models.Player{
		Name: name, Team: team, Position: pos, Price: price,
	}}
}

func freshTeam() *models.Team {
	return &models.Team{
		TeamIndex:       0,
		ParticipantID:   "p0",
		AutoPickEnabled: true,
		Budget:          models.StartingBudget,
	}
}

func stateWith(contestType models.ContestType, b models.Board, team *models.Team) *models.DraftState {
	return &models.DraftState{
		ContestType: contestType,
		Status:      models.DraftStatusActive,
		Board:       b,
		Teams:       []*models.Team{team},
	}
}

func TestSuggestPickPrefersExpensiveNeededPosition(t *testing.T) {
	team := freshTeam()
	b := models.Board{
		{cell("QB-5", "BUF", models.PositionQB, 5), cell("RB-3", "DET", models.PositionRB, 3)},
	}

	sug := NewBestPickStrategy().SuggestPick(team, stateWith(models.ContestTypeCash, b, team))

	require.NotNil(t, sug)
	assert.Equal(t, "QB-5", sug.Player.Name)
	assert.Equal(t, models.SlotQB, sug.Slot)
}

func TestSuggestPickSkipsDraftedAndUnaffordable(t *testing.T) {
	team := freshTeam()
	team.Budget = 2

	drafted := cell("QB-5", "BUF", models.PositionQB, 1)
	drafted.Drafted = true
	b := models.Board{
		{drafted, cell("WR-5", "CIN", models.PositionWR, 5), cell("TE-2", "SF", models.PositionTE, 2)},
	}

	sug := NewBestPickStrategy().SuggestPick(team, stateWith(models.ContestTypeCash, b, team))

	require.NotNil(t, sug)
	assert.Equal(t, "TE-2", sug.Player.Name)
}

func TestSuggestPickNilWhenNothingLegal(t *testing.T) {
	team := freshTeam()
	team.Budget = 0

	b := models.Board{
		{cell("QB-5", "BUF", models.PositionQB, 5)},
	}

	assert.Nil(t, NewBestPickStrategy().SuggestPick(team, stateWith(models.ContestTypeCash, b, team)))
}

func TestSuggestPickAvoidsOverspendLateInDraft(t *testing.T) {
	// Three slots filled, two to go, budget 3: a price-3 pick would leave
	// nothing for the last slot and is penalized below the price-1
	// alternative.
	team := freshTeam()
	team.Budget = 3
	team.Roster.Set(models.SlotQB, models.Player{Name: "q", Position: models.PositionQB, Price: 5})
	team.Roster.Set(models.SlotRB, models.Player{Name: "r", Position: models.PositionRB, Price: 5})
	team.Roster.Set(models.SlotWR, models.Player{Name: "w", Position: models.PositionWR, Price: 2})

	b := models.Board{
		{cell("TE-3", "SF", models.PositionTE, 3), cell("TE-1", "KC", models.PositionTE, 1)},
	}

	sug := NewBestPickStrategy().SuggestPick(team, stateWith(models.ContestTypeCash, b, team))

	require.NotNil(t, sug)
	assert.Equal(t, "TE-1", sug.Player.Name)
}

func TestSuggestPickFavorsStackInKingpin(t *testing.T) {
	team := freshTeam()
	team.Roster.Set(models.SlotQB, models.Player{Name: "Pat Mahomes", Team: "KC", Position: models.PositionQB, Price: 5})

	// Same price, same position; only the stack separates them.
	b := models.Board{
		{cell("WR-KC", "KC", models.PositionWR, 3), cell("WR-MIN", "MIN", models.PositionWR, 3)},
	}

	cash := NewBestPickStrategy().SuggestPick(team, stateWith(models.ContestTypeCash, b, team))
	require.NotNil(t, cash)
	assert.Equal(t, "WR-KC", cash.Player.Name, "ties break row-major")

	// Swap columns so the stack candidate scans second; kingpin still finds it.
	b = models.Board{
		{cell("WR-MIN", "MIN", models.PositionWR, 3), cell("WR-KC", "KC", models.PositionWR, 3)},
	}
	kingpin := NewBestPickStrategy().SuggestPick(team, stateWith(models.ContestTypeKingpin, b, team))
	require.NotNil(t, kingpin)
	assert.Equal(t, "WR-KC", kingpin.Player.Name)

	cash = NewBestPickStrategy().SuggestPick(team, stateWith(models.ContestTypeCash, b, team))
	require.NotNil(t, cash)
	assert.Equal(t, "WR-MIN", cash.Player.Name, "no stack weighting in cash contests")
}
