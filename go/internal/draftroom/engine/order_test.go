package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnakeOrder(t *testing.T) {
	order := SnakeOrder(5, 5)

	assert.Len(t, order, 25)
	// Even rounds ascend, odd rounds descend.
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order[0:5])
	assert.Equal(t, []int{4, 3, 2, 1, 0}, order[5:10])
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order[10:15])
	assert.Equal(t, []int{4, 3, 2, 1, 0}, order[15:20])
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order[20:25])
}

func TestSnakeOrderEveryTeamPicksEveryRound(t *testing.T) {
	order := SnakeOrder(5, 5)

	counts := make(map[int]int)
	for _, idx := range order {
		counts[idx]++
	}
	for team := 0; team < 5; team++ {
		assert.Equal(t, 5, counts[team], "team %d", team)
	}
}
