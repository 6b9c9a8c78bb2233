package relay

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/quip/pkg/deliver"
	"github.com/papercomputeco/quip/pkg/eventstream"
)

// State names the supervisor's lifecycle states.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateStreaming  State = "streaming"
)

// Status is a read-only snapshot of the supervisor for the status API. It is
// published by the event loop; readers never touch the store itself.
type Status struct {
	State      State     `json:"state"`
	Nick       string    `json:"nick,omitempty"`
	Since      time.Time `json:"since"`
	Identities int       `json:"identities"`
	Exchanges  int64     `json:"exchanges"`
}

type statusValue struct {
	v atomic.Value
}

// Status returns the most recently published snapshot.
func (s *Supervisor) Status() Status {
	st, _ := s.status.v.Load().(Status)
	return st
}

func (s *Supervisor) setStatus(state State, nick string) {
	since := time.Now()
	if prev, ok := s.status.v.Load().(Status); ok && prev.State == state {
		since = prev.Since
	}

	s.status.v.Store(Status{
		State:      state,
		Nick:       nick,
		Since:      since,
		Identities: s.store.Identities(),
		Exchanges:  s.exchanges,
	})
}

// publishExchange emits the exchange event. Best-effort: a publisher failure
// is logged and otherwise ignored.
func (s *Supervisor) publishExchange(ctx context.Context, identity, arrivalTarget string, plan deliver.Plan, fallback bool, started time.Time) {
	if s.publisher == nil {
		return
	}

	strategy := "direct"
	if plan.Strategy == deliver.Redirect {
		strategy = "redirect"
	}

	completed := time.Now()
	event := &eventstream.ExchangeCompletedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeExchangeCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     completed,
		Identity:      identity,
		ArrivalTarget: arrivalTarget,
		Strategy:      strategy,
		Chunks:        len(plan.Sends),
		Fallback:      fallback,
		StartedAt:     started,
		CompletedAt:   completed,
		DurationMs:    completed.Sub(started).Milliseconds(),
	}

	if err := s.publisher.PublishExchange(ctx, event); err != nil {
		s.logger.Error("publishing exchange event",
			zap.String("identity", identity),
			zap.Error(err),
		)
	}
}
