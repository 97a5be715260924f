package models

// Position defines an on-field position.
type Position string

const (
	PositionQB   Position = "QB"
	PositionRB   Position = "RB"
	PositionWR   Position = "WR"
	PositionTE   Position = "TE"
	PositionFlex Position = "FLEX"
)

// RosterSlot defines a slot on a team roster. FLEX accepts RB/WR/TE.
type RosterSlot string

const (
	SlotQB   RosterSlot = "QB"
	SlotRB   RosterSlot = "RB"
	SlotWR   RosterSlot = "WR"
	SlotTE   RosterSlot = "TE"
	SlotFlex RosterSlot = "FLEX"
)

// RosterSlots lists every slot in draft order.
var RosterSlots = []RosterSlot{SlotQB, SlotRB, SlotWR, SlotTE, SlotFlex}

// Player is a draftable player as it appears on the board.
type Player struct {
	Name             string   `json:"name"`
	Team             string   `json:"team"`
	Position         Position `json:"position"`
	OriginalPosition Position `json:"original_position,omitempty"`
	Price            int      `json:"price"` // 1..5
}

// EffectivePosition returns the player's real position. FLEX board cells
// carry their underlying position in OriginalPosition.
func (p Player) EffectivePosition() Position {
	if p.OriginalPosition != "" {
		return p.OriginalPosition
	}
	return p.Position
}

// IsPassCatcher reports whether the player is a WR or TE by either position
// field. Used by stack bonus scoring.
func (p Player) IsPassCatcher() bool {
	return p.Position == PositionWR || p.Position == PositionTE ||
		p.OriginalPosition == PositionWR || p.OriginalPosition == PositionTE
}

// IsQB reports whether the player is a quarterback by either position field.
func (p Player) IsQB() bool {
	return p.Position == PositionQB || p.OriginalPosition == PositionQB
}

// SamePlayer reports whether two cells reference the same real-world player.
// The board may hand out the same player in multiple cells; identity is the
// (name, team) pair.
func (p Player) SamePlayer(other Player) bool {
	return p.Name == other.Name && p.Team == other.Team
}
