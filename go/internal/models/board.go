package models

// BoardCell is one cell on the player board. A cell transitions
// drafted=false -> true exactly once and never reverts.
type BoardCell struct {
	Player    Player `json:"player"`
	Drafted   bool   `json:"drafted"`
	DraftedBy *int   `json:"drafted_by,omitempty"` // team index, set exactly once
}

// Board is the draft board: five price rows (price 5 down to 1) of
// QB/RB/WR/TE cells plus a same-price FLEX cell, and a trailing mixed FLEX
// row of five cells whose first cell is always QB-origin.
type Board [][]BoardCell

// BoardPriceRows is the number of position rows on the board.
const BoardPriceRows = 5

// BoardFlexRowLen is the number of cells in the trailing FLEX row.
const BoardFlexRowLen = 5

// Cell returns the cell at (row, col), or nil if out of bounds.
func (b Board) Cell(row, col int) *BoardCell {
	if row < 0 || row >= len(b) {
		return nil
	}
	if col < 0 || col >= len(b[row]) {
		return nil
	}
	return &b[row][col]
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	out := make(Board, len(b))
	for i, row := range b {
		out[i] = make([]BoardCell, len(row))
		copy(out[i], row)
		for j := range out[i] {
			if row[j].DraftedBy != nil {
				idx := *row[j].DraftedBy
				out[i][j].DraftedBy = &idx
			}
		}
	}
	return out
}
