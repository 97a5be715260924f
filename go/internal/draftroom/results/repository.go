package results

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/blitzdraft/go/internal/draftroom/events"
)

// Repository persists completed drafts to Postgres for settlement and
// history. Writes are idempotent on room_id so completion retries are safe.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a results repository on a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveCompletedDraft writes the final rosters and the full pick log in one
// transaction. A second call for the same room is a no-op.
func (r *Repository) SaveCompletedDraft(ctx context.Context, result events.DraftCompletedPayload) error {
	teamsJSON, err := json.Marshal(result.Teams)
	if err != nil {
		return fmt.Errorf("marshal teams: %w", err)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO draft_results (room_id, contest_id, teams, completed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (room_id) DO NOTHING`,
		result.RoomID, result.ContestID, teamsJSON, result.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert draft result %s: %w", result.RoomID, err)
	}
	if tag.RowsAffected() == 0 {
		// Already persisted by an earlier attempt.
		log.Debug().Str("room_id", result.RoomID).Msg("draft result already saved")
		return tx.Commit(ctx)
	}

	for _, pick := range result.Picks {
		var playerJSON []byte
		if pick.Player != nil {
			if playerJSON, err = json.Marshal(pick.Player); err != nil {
				return fmt.Errorf("marshal pick %d player: %w", pick.PickNumber, err)
			}
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO draft_result_picks
				(room_id, pick_number, team_index, player, slot, board_row, board_col, skipped, reason, picked_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (room_id, pick_number) DO NOTHING`,
			result.RoomID, pick.PickNumber, pick.TeamIndex, playerJSON,
			string(pick.Slot), pick.Row, pick.Col, pick.Skipped, pick.Reason, pick.Timestamp,
		); err != nil {
			return fmt.Errorf("insert pick %d for %s: %w", pick.PickNumber, result.RoomID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit draft result %s: %w", result.RoomID, err)
	}

	log.Info().
		Str("room_id", result.RoomID).
		Str("contest_id", result.ContestID).
		Int("picks", len(result.Picks)).
		Msg("draft result persisted")
	return nil
}
