package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// JetStreamConfig configures the draft completion stream. Completions are
// small and rare (one message per finished room), so the stream keeps a
// generous age window and dedupes on room ID.
type JetStreamConfig struct {
	URL           string
	Stream        string
	SubjectPrefix string
	ReconnectWait time.Duration
	MaxAge        time.Duration
	DedupeWindow  time.Duration
}

// DefaultJetStreamConfig returns production defaults for the draft event
// stream.
func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		URL:           nats.DefaultURL,
		Stream:        "DRAFT_EVENTS",
		SubjectPrefix: "draft.events",
		ReconnectWait: 2 * time.Second,
		MaxAge:        7 * 24 * time.Hour,
		DedupeWindow:  2 * time.Hour,
	}
}

// JetStreamPublisher announces completed drafts on NATS JetStream so
// settlement and contest services can react without coupling to the room
// engine. A room completes exactly once; publishing with the room ID as the
// message ID makes retries and restarts idempotent within the dedupe window.
type JetStreamPublisher struct {
	nc  *nats.Conn
	js  jetstream.JetStream
	cfg JetStreamConfig
}

// NewJetStreamPublisher connects to NATS and creates or updates the
// completion stream.
func NewJetStreamPublisher(cfg JetStreamConfig) (*JetStreamPublisher, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        cfg.Stream,
		Description: "Draft room completion events",
		Subjects:    []string{cfg.SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		Storage:     jetstream.FileStorage,
		MaxAge:      cfg.MaxAge,
		Duplicates:  cfg.DedupeWindow,
	}); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream %s: %w", cfg.Stream, err)
	}

	return &JetStreamPublisher{nc: nc, js: js, cfg: cfg}, nil
}

func (p *JetStreamPublisher) completedSubject(roomID string) string {
	return fmt.Sprintf("%s.completed.%s", p.cfg.SubjectPrefix, roomID)
}

// PublishDraftCompleted publishes the completion payload for one room.
func (p *JetStreamPublisher) PublishDraftCompleted(ctx context.Context, result DraftCompletedPayload) error {
	data, err := json.Marshal(New(TypeDraftCompleted, result))
	if err != nil {
		return fmt.Errorf("marshal completion event: %w", err)
	}

	ack, err := p.js.PublishMsg(ctx, &nats.Msg{
		Subject: p.completedSubject(result.RoomID),
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{string(TypeDraftCompleted)},
			"Contest-ID": []string{result.ContestID},
		},
	},
		jetstream.WithMsgID(result.RoomID),
		jetstream.WithExpectStream(p.cfg.Stream),
	)
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}

	log.Info().
		Str("room_id", result.RoomID).
		Str("contest_id", result.ContestID).
		Uint64("sequence", ack.Sequence).
		Msg("published draft completion")
	return nil
}

// Close shuts the NATS connection down.
func (p *JetStreamPublisher) Close() error {
	if p.nc != nil {
		p.nc.Close()
	}
	return nil
}
