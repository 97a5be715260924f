package engine

// SnakeOrder returns the sequence of team indices for a snake draft: round r
// is ascending when r is even and descending when odd, so no seat is
// permanently stuck picking last. Length is teamCount*rounds.
func SnakeOrder(teamCount, rounds int) []int {
	order := make([]int, 0, teamCount*rounds)
	for round := 0; round < rounds; round++ {
		if round%2 == 0 {
			for i := 0; i < teamCount; i++ {
				order = append(order, i)
			}
		} else {
			for i := teamCount - 1; i >= 0; i-- {
				order = append(order, i)
			}
		}
	}
	return order
}
