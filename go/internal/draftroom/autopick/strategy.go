package autopick

import (
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/engine"
	"github.com/mcdev12/blitzdraft/go/internal/models"
)

// Suggestion is a concrete pick the advisor recommends.
type Suggestion struct {
	Row    int
	Col    int
	Player models.Player
	Slot   models.RosterSlot
	Score  int
}

// Strategy suggests a pick for a team that failed to act (timeout) or has
// no human behind it (bot). A nil suggestion means no legal pick exists and
// the turn must be skipped.
type Strategy interface {
	SuggestPick(team *models.Team, state *models.DraftState) *Suggestion
}

// BestPickStrategy scores every undrafted, affordable, slot-compatible cell
// and returns the best one. Pure function of the inputs; ties break toward
// the earliest cell in a row-major board scan.
type BestPickStrategy struct{}

// NewBestPickStrategy returns the default scoring strategy.
func NewBestPickStrategy() *BestPickStrategy {
	return &BestPickStrategy{}
}

// SuggestPick implements Strategy.
//
// Score = price*10
//   - +50 when the player fills a still-open natural position slot
//   - +30 while the roster has fewer than four filled slots, nudging
//     completion before FLEX optimization
//   - -50 when the pick would leave less budget than mandatory slots remain
//   - +20 per point of potential stack bonus in stacking contests
func (st *BestPickStrategy) SuggestPick(team *models.Team, state *models.DraftState) *Suggestion {
	spendable := team.SpendableBudget()
	filled := team.Roster.FilledCount()

	var best *Suggestion
	for row := range state.Board {
		for col := range state.Board[row] {
			c := &state.Board[row][col]
			if c.Drafted || c.Player.Price > spendable {
				continue
			}
			slots := team.AvailableSlots(c.Player)
			if len(slots) == 0 {
				continue
			}

			score := c.Player.Price * 10

			pos := c.Player.EffectivePosition()
			if pos != models.PositionFlex && team.Roster.Get(models.RosterSlot(pos)) == nil {
				score += 50
			}

			if filled < 4 {
				score += 30
			}

			slotsRemaining := len(models.RosterSlots) - filled - 1
			budgetAfter := spendable - c.Player.Price
			if slotsRemaining > 0 && budgetAfter < slotsRemaining {
				score -= 50
			}

			if state.ContestType.IsStacking() {
				score += 20 * engine.KingpinBonus(team.Roster.Players(), c.Player)
			}

			if best == nil || score > best.Score {
				best = &Suggestion{
					Row:    row,
					Col:    col,
					Player: c.Player,
					Slot:   slots[0],
					Score:  score,
				}
			}
		}
	}
	return best
}
