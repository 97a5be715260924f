package models

// StartingBudget is the budget every team begins the draft with.
const StartingBudget = 15

// Roster holds the five slot assignments for a team. A slot, once filled,
// is immutable for the rest of the draft.
type Roster struct {
	QB   *Player `json:"QB"`
	RB   *Player `json:"RB"`
	WR   *Player `json:"WR"`
	TE   *Player `json:"TE"`
	Flex *Player `json:"FLEX"`
}

// Get returns the player in the given slot, or nil if the slot is open.
func (r *Roster) Get(slot RosterSlot) *Player {
	switch slot {
	case SlotQB:
		return r.QB
	case SlotRB:
		return r.RB
	case SlotWR:
		return r.WR
	case SlotTE:
		return r.TE
	case SlotFlex:
		return r.Flex
	}
	return nil
}

// Set fills the given slot. Callers must check the slot is open first.
func (r *Roster) Set(slot RosterSlot, p Player) {
	switch slot {
	case SlotQB:
		r.QB = &p
	case SlotRB:
		r.RB = &p
	case SlotWR:
		r.WR = &p
	case SlotTE:
		r.TE = &p
	case SlotFlex:
		r.Flex = &p
	}
}

// Players returns all filled roster entries.
func (r *Roster) Players() []Player {
	var out []Player
	for _, slot := range RosterSlots {
		if p := r.Get(slot); p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// FilledCount returns the number of filled slots.
func (r *Roster) FilledCount() int {
	return len(r.Players())
}

// Team is one draft participant's seat: identity, roster and budget ledger.
type Team struct {
	TeamIndex       int    `json:"team_index"`
	ParticipantID   string `json:"participant_id"`
	DisplayName     string `json:"display_name"`
	Color           string `json:"color"`
	IsHuman         bool   `json:"is_human"`
	AutoPickEnabled bool   `json:"auto_pick_enabled"`
	Roster          Roster `json:"roster"`
	Budget          int    `json:"budget"`
	Bonus           int    `json:"bonus"`
	Connected       bool   `json:"connected"`
}

// SpendableBudget is the total a team can put toward its next pick.
func (t *Team) SpendableBudget() int {
	return t.Budget + t.Bonus
}

// AvailableSlots returns the roster slots the given player could legally
// fill, natural position first, FLEX second. QBs never qualify for FLEX.
func (t *Team) AvailableSlots(p Player) []RosterSlot {
	pos := p.EffectivePosition()
	var slots []RosterSlot
	if t.Roster.Get(RosterSlot(pos)) == nil {
		slots = append(slots, RosterSlot(pos))
	}
	if t.Roster.Flex == nil &&
		(pos == PositionRB || pos == PositionWR || pos == PositionTE) {
		slots = append(slots, SlotFlex)
	}
	return slots
}
