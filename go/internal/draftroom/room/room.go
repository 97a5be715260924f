package room

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/blitzdraft/go/internal/draftroom/autopick"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/bot"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/engine"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/events"
	"github.com/mcdev12/blitzdraft/go/internal/models"
)

// DefaultRetention is how long a completed or errored room stays resident
// before it is torn down and its snapshot deleted.
const DefaultRetention = 5 * time.Minute

const snapshotTimeout = 2 * time.Second

// Broadcaster fans room events out to connected sessions. Implementations
// must not retain the event slices past the call; payloads reference live
// draft state and are only safe to marshal synchronously inside the call.
type Broadcaster interface {
	BroadcastToRoom(roomID string, evts []events.Event)
	SendToParticipant(participantID string, evts []events.Event)
}

// SnapshotStore persists room state for crash recovery. Save and Delete are
// best-effort from the room's point of view: failures are logged, never
// allowed to stall the draft.
type SnapshotStore interface {
	Save(ctx context.Context, state *models.DraftState) error
	Delete(ctx context.Context, roomID string) error
}

type intentKind int

const (
	intentJoin intentKind = iota
	intentLeave
	intentMakePick
	intentSkipTurn
	intentSetAutoPick
	intentRequestState
	intentBotAct
	intentForceStart
)

// intent is one serialized unit of work for the room actor. Every mutation
// of draft state flows through the intents channel; nothing else touches it.
type intent struct {
	kind          intentKind
	participantID string
	row, col      int
	slot          models.RosterSlot
	reason        string
	enabled       bool
	turn          int // botAct: the turn this action was scheduled for
}

// Room is the single-writer coordinator for one draft. All state access
// happens on the run goroutine; the exported methods only enqueue intents.
type Room struct {
	id    string
	eng   *engine.Engine
	state *models.DraftState

	strategy  autopick.Strategy
	bots      *bot.Controller
	clock     clockwork.Clock
	bcast     Broadcaster
	snapshots SnapshotStore
	retention time.Duration

	onCompleted func(events.DraftCompletedPayload)
	onClosed    func(roomID string)

	intents chan intent
	done    chan struct{}
	closed  sync.Once

	// errored flips when an invariant breach is detected; the room then
	// refuses further mutation instead of serving corrupt state.
	errored bool
}

func newRoom(id string, eng *engine.Engine, state *models.DraftState, deps Deps, retention time.Duration) *Room {
	return &Room{
		id:          id,
		eng:         eng,
		state:       state,
		strategy:    deps.Strategy,
		bots:        deps.Bots,
		clock:       deps.Clock,
		bcast:       deps.Broadcaster,
		snapshots:   deps.Snapshots,
		retention:   retention,
		onCompleted: deps.onCompleted,
		onClosed:    deps.onClosed,
		intents:     make(chan intent, 64),
		done:        make(chan struct{}),
	}
}

// ID returns the room identifier.
func (r *Room) ID() string { return r.id }

// Join marks the participant connected and replies with a full snapshot.
func (r *Room) Join(participantID string) {
	r.enqueue(intent{kind: intentJoin, participantID: participantID})
}

// Leave marks the participant disconnected. Their seat, roster and turn
// obligations survive; only liveness changes.
func (r *Room) Leave(participantID string) {
	r.enqueue(intent{kind: intentLeave, participantID: participantID})
}

// MakePick submits a pick for the participant's current turn.
func (r *Room) MakePick(participantID string, row, col int, slot models.RosterSlot) {
	r.enqueue(intent{kind: intentMakePick, participantID: participantID, row: row, col: col, slot: slot})
}

// SkipTurn voluntarily skips the participant's current turn.
func (r *Room) SkipTurn(participantID string) {
	r.enqueue(intent{kind: intentSkipTurn, participantID: participantID, reason: "manual"})
}

// SetAutoPick toggles timeout behavior for the participant's seat: auto-pick
// when enabled, a timeout skip when not.
func (r *Room) SetAutoPick(participantID string, enabled bool) {
	r.enqueue(intent{kind: intentSetAutoPick, participantID: participantID, enabled: enabled})
}

// RequestState replies to the participant with a full snapshot.
func (r *Room) RequestState(participantID string) {
	r.enqueue(intent{kind: intentRequestState, participantID: participantID})
}

// ForceStart begins the countdown even if not every human has connected.
func (r *Room) ForceStart() {
	r.enqueue(intent{kind: intentForceStart})
}

// Close stops the run loop. Idempotent.
func (r *Room) Close() {
	r.closed.Do(func() { close(r.done) })
}

func (r *Room) enqueue(in intent) {
	select {
	case r.intents <- in:
	case <-r.done:
	}
}

// run is the room actor loop. It owns r.state exclusively: ticks, client
// intents and scheduled bot actions are all serialized here, which is what
// makes "exactly one resolution per turn" hold without locks.
func (r *Room) run(ctx context.Context) {
	ticker := r.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case in := <-r.intents:
			r.handle(ctx, in)
		case <-ticker.Chan():
			r.tick(ctx)
		}
	}
}

func (r *Room) tick(ctx context.Context) {
	if r.errored {
		return
	}
	switch r.state.Status {
	case models.DraftStatusCountdown:
		evts, err := r.eng.CountdownTick(r.state)
		r.afterMutation(ctx, evts, err, "")
	case models.DraftStatusActive:
		evts, expired, err := r.eng.Tick(r.state)
		if err != nil {
			r.fail(err)
			return
		}
		if expired {
			r.resolveExpiredTurn(ctx)
			return
		}
		r.bcast.BroadcastToRoom(r.id, evts)
	}
}

// resolveExpiredTurn handles a turn timer hitting zero: auto-pick for seats
// with auto-pick on (all bots, humans by default), otherwise a timeout skip.
func (r *Room) resolveExpiredTurn(ctx context.Context) {
	team := r.state.CurrentTeam()
	if team == nil {
		return
	}
	if !team.AutoPickEnabled && team.IsHuman {
		evts, err := r.eng.SkipTurn(r.state, team.ParticipantID, engine.ReasonTimeout, true)
		r.afterMutation(ctx, evts, err, "")
		return
	}
	r.autoResolve(ctx, team)
}

// autoResolve picks for a seat via the strategy, falling back to a
// no-valid-picks skip when the board offers nothing legal.
func (r *Room) autoResolve(ctx context.Context, team *models.Team) {
	if sug := r.strategy.SuggestPick(team, r.state); sug != nil {
		evts, err := r.eng.SubmitPick(r.state, team.ParticipantID, sug.Row, sug.Col, sug.Slot)
		r.afterMutation(ctx, evts, err, "")
		return
	}
	evts, err := r.eng.SkipTurn(r.state, team.ParticipantID, engine.ReasonNoValidPicks, true)
	r.afterMutation(ctx, evts, err, "")
}

func (r *Room) handle(ctx context.Context, in intent) {
	if r.errored && in.kind != intentRequestState && in.kind != intentLeave {
		if in.participantID != "" {
			r.bcast.SendToParticipant(in.participantID, []events.Event{
				events.New(events.TypeError, events.ErrorPayload{
					Code:    "ROOM_ERRORED",
					Message: "this draft room hit an internal error and is closed to actions",
				}),
			})
		}
		return
	}

	switch in.kind {
	case intentJoin:
		r.handleJoin(ctx, in.participantID)
	case intentLeave:
		r.handleLeave(in.participantID)
	case intentMakePick:
		evts, err := r.eng.SubmitPick(r.state, in.participantID, in.row, in.col, in.slot)
		r.afterMutation(ctx, evts, err, in.participantID)
	case intentSkipTurn:
		evts, err := r.eng.SkipTurn(r.state, in.participantID, in.reason, false)
		r.afterMutation(ctx, evts, err, in.participantID)
	case intentSetAutoPick:
		r.handleSetAutoPick(in.participantID, in.enabled)
	case intentRequestState:
		r.sendSnapshot(in.participantID)
	case intentBotAct:
		r.handleBotAct(ctx, in.turn)
	case intentForceStart:
		if r.state.Status == models.DraftStatusWaiting {
			evts, err := r.eng.StartCountdown(r.state)
			r.afterMutation(ctx, evts, err, "")
		}
	}
}

// handleJoin is idempotent per participant: duplicate joins just refresh the
// snapshot without re-announcing the membership change.
func (r *Room) handleJoin(ctx context.Context, participantID string) {
	team := r.state.TeamByParticipant(participantID)
	if team == nil {
		r.bcast.SendToParticipant(participantID, []events.Event{
			events.New(events.TypeError, events.ErrorPayload{
				Code:    string(engine.CodeEntryNotOwned),
				Message: "you do not hold a seat in this draft",
			}),
		})
		return
	}

	wasConnected := team.Connected
	team.Connected = true
	r.sendSnapshot(participantID)

	if !wasConnected {
		r.broadcastRoomState()
	}

	if r.state.Status == models.DraftStatusWaiting && r.allHumansConnected() {
		evts, err := r.eng.StartCountdown(r.state)
		r.afterMutation(ctx, evts, err, "")
	}
}

func (r *Room) handleLeave(participantID string) {
	team := r.state.TeamByParticipant(participantID)
	if team == nil || !team.Connected {
		return
	}
	team.Connected = false
	r.broadcastRoomState()
}

func (r *Room) handleSetAutoPick(participantID string, enabled bool) {
	team := r.state.TeamByParticipant(participantID)
	if team == nil {
		return
	}
	team.AutoPickEnabled = enabled
	r.sendSnapshot(participantID)
}

// handleBotAct fires when a scheduled bot delay elapses. The captured turn
// number guards against staleness: if the turn already resolved (timeout,
// a racing intent) the action is dropped.
func (r *Room) handleBotAct(ctx context.Context, turn int) {
	if r.state.Status != models.DraftStatusActive || r.state.CurrentTurn != turn {
		return
	}
	team := r.state.CurrentTeam()
	if team == nil || team.IsHuman {
		return
	}
	r.autoResolve(ctx, team)
}

// afterMutation is the common tail of every engine call: route validation
// errors back to the offender, escalate state errors, broadcast the rest.
func (r *Room) afterMutation(ctx context.Context, evts []events.Event, err error, participantID string) {
	if err != nil {
		if verr, ok := engine.AsValidation(err); ok {
			if participantID != "" {
				r.bcast.SendToParticipant(participantID, []events.Event{
					events.New(events.TypeError, events.ErrorPayload{
						Code:    string(verr.Code),
						Message: verr.Message,
					}),
				})
			} else {
				log.Warn().Err(err).Str("room_id", r.id).Msg("system action rejected")
			}
			return
		}
		r.fail(err)
		return
	}
	if len(evts) == 0 {
		return
	}

	r.bcast.BroadcastToRoom(r.id, evts)
	r.saveSnapshot(ctx)
	r.scheduleBot()

	if r.state.Status == models.DraftStatusCompleted {
		r.complete()
	}
}

// scheduleBot arranges a delayed pick when the new current seat is a bot.
// The callback re-enters through the intents channel; it never touches
// state directly.
func (r *Room) scheduleBot() {
	team := r.state.CurrentTeam()
	if team == nil || team.IsHuman {
		return
	}
	r.bots.Schedule(r.state.CurrentTurn, func(turn int) {
		r.enqueue(intent{kind: intentBotAct, turn: turn})
	})
}

func (r *Room) complete() {
	payload := events.DraftCompletedPayload{
		RoomID:      r.state.RoomID,
		ContestID:   r.state.ContestID,
		Teams:       r.state.Teams,
		Picks:       r.state.Picks,
		CompletedAt: *r.state.CompletedAt,
	}
	if r.onCompleted != nil {
		r.onCompleted(payload)
	}
	r.scheduleTeardown()
}

// fail marks the room errored after an invariant breach. Clients get told;
// the snapshot is kept for post-mortem, and teardown runs on the usual
// retention timer.
func (r *Room) fail(err error) {
	if r.errored {
		return
	}
	r.errored = true
	log.Error().Err(err).Str("room_id", r.id).Msg("draft room hit invariant breach, freezing")
	r.bcast.BroadcastToRoom(r.id, []events.Event{
		events.New(events.TypeError, events.ErrorPayload{
			Code:    "ROOM_ERRORED",
			Message: "this draft room hit an internal error and is closed to actions",
		}),
	})
	r.scheduleTeardown()
}

func (r *Room) scheduleTeardown() {
	r.clock.AfterFunc(r.retention, func() {
		r.Close()
		if r.snapshots != nil && !r.errored {
			ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
			defer cancel()
			if err := r.snapshots.Delete(ctx, r.id); err != nil {
				log.Warn().Err(err).Str("room_id", r.id).Msg("failed to delete room snapshot")
			}
		}
		if r.onClosed != nil {
			r.onClosed(r.id)
		}
	})
}

func (r *Room) sendSnapshot(participantID string) {
	team := r.state.TeamByParticipant(participantID)
	if team == nil {
		return
	}
	current := r.state.CurrentTeam()
	r.bcast.SendToParticipant(participantID, []events.Event{
		events.New(events.TypeDraftStateUpdate, events.StateSnapshotPayload{
			State:         r.state,
			DraftPosition: team.TeamIndex,
			IsMyTurn:      current != nil && current.TeamIndex == team.TeamIndex,
		}),
	})
}

func (r *Room) broadcastRoomState() {
	connected := 0
	for _, t := range r.state.Teams {
		if t.Connected {
			connected++
		}
	}
	r.bcast.BroadcastToRoom(r.id, []events.Event{
		events.New(events.TypeRoomState, events.RoomStatePayload{
			RoomID:    r.id,
			Status:    r.state.Status,
			Teams:     r.state.Teams,
			Connected: connected,
		}),
	})
}

func (r *Room) allHumansConnected() bool {
	for _, t := range r.state.Teams {
		if t.IsHuman && !t.Connected {
			return false
		}
	}
	return true
}

func (r *Room) saveSnapshot(ctx context.Context) {
	if r.snapshots == nil {
		return
	}
	sctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()
	if err := r.snapshots.Save(sctx, r.state); err != nil {
		log.Warn().Err(err).Str("room_id", r.id).Msg("failed to save room snapshot")
	}
}
