package engine

import "github.com/mcdev12/blitzdraft/go/internal/models"

// KingpinBonus returns the incremental stack bonus a team earns by adding
// newPlayer to a roster currently holding existing. Two independent
// conditions, each worth +1, both may fire on the same pick:
//
//   - duplicate player: this pick is exactly the second copy of the same
//     (name, team) pair on the roster; a third copy earns nothing more
//   - QB stack: the pick pairs a QB with a pass catcher (WR/TE) from the
//     same real-world team, in either pick order
func KingpinBonus(existing []models.Player, newPlayer models.Player) int {
	bonus := 0

	dupes := 0
	for _, p := range existing {
		if p.SamePlayer(newPlayer) {
			dupes++
		}
	}
	if dupes == 1 {
		bonus++
	}

	if newPlayer.IsPassCatcher() {
		for _, p := range existing {
			if p.IsQB() && p.Team == newPlayer.Team {
				bonus++
				break
			}
		}
	} else if newPlayer.IsQB() {
		for _, p := range existing {
			if p.IsPassCatcher() && p.Team == newPlayer.Team {
				bonus++
				break
			}
		}
	}

	return bonus
}
