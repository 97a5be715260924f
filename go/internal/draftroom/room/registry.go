package room

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/blitzdraft/go/internal/draftroom/autopick"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/bot"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/engine"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/events"
	"github.com/mcdev12/blitzdraft/go/internal/models"
)

const (
	completionAttempts = 3
	completionBackoff  = 2 * time.Second
)

// ResultsSink persists finished drafts for settlement.
type ResultsSink interface {
	SaveCompletedDraft(ctx context.Context, result events.DraftCompletedPayload) error
}

// CompletionPublisher announces finished drafts to downstream consumers.
type CompletionPublisher interface {
	PublishDraftCompleted(ctx context.Context, result events.DraftCompletedPayload) error
}

// Deps wires a registry and its rooms to the outside world. Snapshots,
// Results and Publisher may be nil; the corresponding step is then skipped.
type Deps struct {
	Clock       clockwork.Clock
	Broadcaster Broadcaster
	Strategy    autopick.Strategy
	Bots        *bot.Controller
	Snapshots   SnapshotStore
	Results     ResultsSink
	Publisher   CompletionPublisher

	onCompleted func(events.DraftCompletedPayload)
	onClosed    func(roomID string)
}

// Config tunes registry behavior.
type Config struct {
	// Retention is how long completed/errored rooms stay resident.
	Retention time.Duration
	// FillTimeout force-starts a waiting room even if not every human has
	// shown up. Zero disables the force start.
	FillTimeout time.Duration
}

// StartRequest describes a new draft room to spin up. Missing seats are
// filled with bots up to room capacity.
type StartRequest struct {
	ContestID    string
	ContestType  models.ContestType
	Participants []engine.Participant
	Board        models.Board
}

// Registry owns the live draft rooms of this process. It maps participants
// to their room for rejoin, spins up room actors, and drives the completion
// pipeline (results repository, event bus).
type Registry struct {
	eng  *engine.Engine
	deps Deps
	cfg  Config

	// ctx bounds the lifetime of every room actor. Rooms outlive the request
	// that created them, so actors run under this context, never the caller's.
	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.RWMutex
	rooms         map[string]*Room
	byParticipant map[string]string
}

// NewRegistry creates a registry. The engine shares the registry clock so
// fake-clock tests control both timers and timestamps.
func NewRegistry(deps Deps, cfg Config) *Registry {
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		eng:           engine.New(deps.Clock),
		deps:          deps,
		cfg:           cfg,
		ctx:           ctx,
		cancel:        cancel,
		rooms:         make(map[string]*Room),
		byParticipant: make(map[string]string),
	}
}

// StartDraft creates a room for the contest, fills empty seats with bots
// and starts the actor loop. The returned state is a detached snapshot.
// The actor runs for the room's lifetime, not the caller's: ctx here covers
// only the creation itself, so a canceled HTTP request cannot kill the room.
func (g *Registry) StartDraft(_ context.Context, req StartRequest) (*models.DraftState, error) {
	if len(req.Participants) == 0 || len(req.Participants) > engine.RoomCapacity {
		return nil, engine.NewValidationError(engine.CodeRoomNotFound,
			"a draft takes 1 to %d human participants, got %d", engine.RoomCapacity, len(req.Participants))
	}

	roomID := uuid.NewString()
	participants := bot.FillParticipants(req.Participants, engine.RoomCapacity)
	state := g.eng.NewState(roomID, req.ContestID, req.ContestType, participants, req.Board)

	r := g.register(state)
	go r.run(g.ctx)

	if g.cfg.FillTimeout > 0 {
		g.deps.Clock.AfterFunc(g.cfg.FillTimeout, r.ForceStart)
	}

	log.Info().
		Str("room_id", roomID).
		Str("contest_id", req.ContestID).
		Str("contest_type", string(req.ContestType)).
		Int("humans", len(req.Participants)).
		Msg("draft room created")

	return state.Clone(), nil
}

// Restore revives a room from a recovered snapshot after a process restart.
// Human seats come back disconnected; their sessions died with the old
// process and must rejoin.
func (g *Registry) Restore(ctx context.Context, state *models.DraftState) error {
	if state.Status == models.DraftStatusCompleted {
		if g.deps.Snapshots != nil {
			if err := g.deps.Snapshots.Delete(ctx, state.RoomID); err != nil {
				log.Warn().Err(err).Str("room_id", state.RoomID).Msg("failed to delete stale snapshot")
			}
		}
		return nil
	}

	for _, t := range state.Teams {
		if t.IsHuman {
			t.Connected = false
		}
	}

	r := g.register(state)
	// Re-arm the bot timer lost in the restart; safe before run starts.
	r.scheduleBot()
	go r.run(g.ctx)

	log.Info().
		Str("room_id", state.RoomID).
		Str("status", string(state.Status)).
		Int("turn", state.CurrentTurn).
		Msg("draft room restored from snapshot")
	return nil
}

func (g *Registry) register(state *models.DraftState) *Room {
	deps := g.deps
	deps.onCompleted = g.handleCompleted
	deps.onClosed = g.handleClosed

	r := newRoom(state.RoomID, g.eng, state, deps, g.cfg.Retention)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.rooms[state.RoomID] = r
	for _, t := range state.Teams {
		if t.IsHuman {
			g.byParticipant[t.ParticipantID] = state.RoomID
		}
	}
	return r
}

// Room looks up a live room.
func (g *Registry) Room(roomID string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[roomID]
	return r, ok
}

// ActiveRoomFor reports the room a participant holds a seat in, if any.
// The gateway uses it to offer rejoin to freshly connected sessions.
func (g *Registry) ActiveRoomFor(participantID string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	roomID, ok := g.byParticipant[participantID]
	return roomID, ok
}

// Shutdown stops every room actor. Snapshots stay in place so the rooms can
// be restored on the next boot.
func (g *Registry) Shutdown() {
	g.cancel()
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.rooms {
		r.Close()
	}
}

// handleCompleted runs the completion pipeline off the room goroutine:
// persist the result, then publish it. Both are retried a few times;
// a stuck downstream must never block a room.
func (g *Registry) handleCompleted(result events.DraftCompletedPayload) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if g.deps.Results != nil {
			if err := g.withRetry(ctx, func() error {
				return g.deps.Results.SaveCompletedDraft(ctx, result)
			}); err != nil {
				log.Error().Err(err).Str("room_id", result.RoomID).Msg("failed to persist draft result")
			}
		}
		if g.deps.Publisher != nil {
			if err := g.withRetry(ctx, func() error {
				return g.deps.Publisher.PublishDraftCompleted(ctx, result)
			}); err != nil {
				log.Error().Err(err).Str("room_id", result.RoomID).Msg("failed to publish draft completion")
			}
		}
	}()
}

func (g *Registry) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= completionAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt < completionAttempts {
			select {
			case <-ctx.Done():
				return err
			default:
				g.deps.Clock.Sleep(completionBackoff)
			}
		}
	}
	return err
}

func (g *Registry) handleClosed(roomID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, roomID)
	for pid, rid := range g.byParticipant {
		if rid == roomID {
			delete(g.byParticipant, pid)
		}
	}
}
