package board

import (
	"math/rand"

	"github.com/mcdev12/blitzdraft/go/internal/models"
)

// Board shape: five price rows (price 5 at the top down to 1) holding one
// QB, RB, WR and TE cell plus a same-price FLEX cell each, then a FLEX row
// of five mixed-price cells whose first cell is always QB-origin. Players
// are sampled with replacement, so the same real-world player can appear in
// multiple cells; duplicate-player bonuses in stacking contests rely on
// that.

var priceRowPositions = []models.Position{models.PositionQB, models.PositionRB, models.PositionWR, models.PositionTE}

var flexPositions = []models.Position{models.PositionRB, models.PositionWR, models.PositionTE}

var rowPrices = []int{5, 4, 3, 2, 1}

// Generate builds a fresh board from the pool. The rng is injected so tests
// can make generation deterministic.
func Generate(pool PlayerPool, rng *rand.Rand) models.Board {
	b := make(models.Board, 0, models.BoardPriceRows+1)

	for _, price := range rowPrices {
		row := make([]models.BoardCell, 0, len(priceRowPositions)+1)
		for _, pos := range priceRowPositions {
			row = append(row, cell(pool, pos, price, rng, false))
		}
		// Each price row carries one FLEX cell at the row's price. QBs never
		// land in these; only the FLEX row's first cell holds one.
		pos := flexPositions[rng.Intn(len(flexPositions))]
		row = append(row, cell(pool, pos, price, rng, true))
		b = append(b, row)
	}

	// FLEX row: forced QB first, then RB/WR/TE, all at random prices.
	flexRow := make([]models.BoardCell, 0, models.BoardFlexRowLen)
	flexRow = append(flexRow, cell(pool, models.PositionQB, randomPrice(rng), rng, true))
	for i := 1; i < models.BoardFlexRowLen; i++ {
		pos := flexPositions[rng.Intn(len(flexPositions))]
		flexRow = append(flexRow, cell(pool, pos, randomPrice(rng), rng, true))
	}
	b = append(b, flexRow)

	return b
}

func cell(pool PlayerPool, pos models.Position, price int, rng *rand.Rand, flex bool) models.BoardCell {
	candidates := pool[pos][price]
	entry := candidates[rng.Intn(len(candidates))]

	p := models.Player{
		Name:     entry.Name,
		Team:     entry.Team,
		Position: pos,
		Price:    price,
	}
	if flex {
		p.Position = models.PositionFlex
		p.OriginalPosition = pos
	}
	return models.BoardCell{Player: p}
}

func randomPrice(rng *rand.Rand) int {
	return rowPrices[rng.Intn(len(rowPrices))]
}
