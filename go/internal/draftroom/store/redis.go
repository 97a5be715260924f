package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/blitzdraft/go/internal/models"
)

const (
	stateKeyPrefix = "draft:state:"
	activeSetKey   = "draft:active"

	// StateTTL bounds how long an abandoned snapshot can linger. Live rooms
	// refresh it on every save; the room layer deletes eagerly on teardown.
	StateTTL = 24 * time.Hour
)

// ErrNotFound is returned when no snapshot exists for a room.
var ErrNotFound = errors.New("draft state not found")

// RedisStore persists draft state snapshots in Redis so in-flight drafts
// survive a process restart. One key per room plus a set of active room IDs
// for recovery scans.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Redis-backed snapshot store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func stateKey(roomID string) string {
	return stateKeyPrefix + roomID
}

// Save writes the full state snapshot and keeps the active-room set in sync
// with the draft's lifecycle.
func (s *RedisStore) Save(ctx context.Context, state *models.DraftState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal draft state: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, stateKey(state.RoomID), data, StateTTL)
	if state.Status == models.DraftStatusCompleted {
		pipe.SRem(ctx, activeSetKey, state.RoomID)
	} else {
		pipe.SAdd(ctx, activeSetKey, state.RoomID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save draft state %s: %w", state.RoomID, err)
	}
	return nil
}

// Load reads one room's snapshot.
func (s *RedisStore) Load(ctx context.Context, roomID string) (*models.DraftState, error) {
	data, err := s.client.Get(ctx, stateKey(roomID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load draft state %s: %w", roomID, err)
	}

	var state models.DraftState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal draft state %s: %w", roomID, err)
	}
	return &state, nil
}

// Delete removes a room's snapshot and its active-set entry.
func (s *RedisStore) Delete(ctx context.Context, roomID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, stateKey(roomID))
	pipe.SRem(ctx, activeSetKey, roomID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete draft state %s: %w", roomID, err)
	}
	return nil
}

// LoadActiveStates returns every non-completed snapshot for boot-time
// recovery. Set entries whose snapshot expired are pruned as they are found.
func (s *RedisStore) LoadActiveStates(ctx context.Context) ([]*models.DraftState, error) {
	roomIDs, err := s.client.SMembers(ctx, activeSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list active drafts: %w", err)
	}

	states := make([]*models.DraftState, 0, len(roomIDs))
	for _, roomID := range roomIDs {
		state, err := s.Load(ctx, roomID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				log.Warn().Str("room_id", roomID).Msg("active draft snapshot expired, pruning")
				if serr := s.client.SRem(ctx, activeSetKey, roomID).Err(); serr != nil {
					log.Warn().Err(serr).Str("room_id", roomID).Msg("failed to prune active set entry")
				}
				continue
			}
			return nil, err
		}
		states = append(states, state)
	}
	return states, nil
}
