package bot

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/engine"
)

// DefaultDelay is how long a bot "thinks" before picking. Independent of the
// human turn timer.
const DefaultDelay = 3 * time.Second

var botNames = []string{"AlphaBot", "BetaBot", "GammaBot", "DeltaBot", "EpsilonBot"}

// FillParticipants tops a participant list up to capacity with bot seats.
func FillParticipants(participants []engine.Participant, capacity int) []engine.Participant {
	out := make([]engine.Participant, len(participants), capacity)
	copy(out, participants)
	for i := len(out); i < capacity; i++ {
		name := botNames[i%len(botNames)]
		out = append(out, engine.Participant{
			ID:          fmt.Sprintf("bot-%d-%s", i, name),
			DisplayName: name,
			IsHuman:     false,
		})
	}
	return out
}

// Controller schedules delayed picks for non-human seats. The callback runs
// on the clock's timer goroutine; callers must route it back into their
// serialized queue rather than touching draft state directly.
type Controller struct {
	clock clockwork.Clock
	delay time.Duration
}

// NewController creates a bot controller. A zero delay falls back to
// DefaultDelay.
func NewController(clock clockwork.Clock, delay time.Duration) *Controller {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Controller{clock: clock, delay: delay}
}

// Schedule arranges fn(turn) to run after the bot delay. The turn number is
// echoed back so the receiver can drop the action if the turn has already
// been resolved by the time it fires.
func (c *Controller) Schedule(turn int, fn func(turn int)) clockwork.Timer {
	return c.clock.AfterFunc(c.delay, func() { fn(turn) })
}
