package board

import (
	"fmt"
	"os"

	"github.com/mcdev12/blitzdraft/go/internal/models"
	"gopkg.in/yaml.v3"
)

// PoolEntry is one player in the pool file.
type PoolEntry struct {
	Name string `yaml:"name" json:"name"`
	Team string `yaml:"team" json:"team"`
}

// PlayerPool maps position -> price tier -> candidate players. The pool is
// static content owned by an external collaborator; the engine only reads it.
type PlayerPool map[models.Position]map[int][]PoolEntry

// LoadPool reads a player pool from a YAML file.
func LoadPool(path string) (PlayerPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pool file: %w", err)
	}

	var pool PlayerPool
	if err := yaml.Unmarshal(data, &pool); err != nil {
		return nil, fmt.Errorf("failed to parse pool file: %w", err)
	}

	if err := pool.Validate(); err != nil {
		return nil, err
	}
	return pool, nil
}

// Validate checks that every position has at least one player in every
// price tier, so board generation can never come up empty.
func (p PlayerPool) Validate() error {
	positions := []models.Position{models.PositionQB, models.PositionRB, models.PositionWR, models.PositionTE}
	for _, pos := range positions {
		tiers, ok := p[pos]
		if !ok {
			return fmt.Errorf("pool missing position %s", pos)
		}
		for price := 1; price <= 5; price++ {
			if len(tiers[price]) == 0 {
				return fmt.Errorf("pool has no %s players at price %d", pos, price)
			}
		}
	}
	return nil
}
