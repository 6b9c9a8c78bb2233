// Package eventstream defines transport-neutral events emitted by the relay
// and the publisher boundary they flow through.
package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeExchangeCompleted is emitted after a full exchange (user
	// turn in, assistant reply delivered) finishes.
	EventTypeExchangeCompleted = "quip.exchange.completed"
)

// ExchangeCompletedEvent is the payload published after each completed
// exchange. Publishing is best-effort and happens after delivery; consumers
// must tolerate gaps.
type ExchangeCompletedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	// Identity is the conversation key the exchange belongs to.
	Identity string `json:"identity"`

	// ArrivalTarget is the channel or nick the triggering message arrived on.
	ArrivalTarget string `json:"arrival_target"`

	// Strategy is "direct" or "redirect".
	Strategy string `json:"strategy"`

	// Chunks is the number of protocol messages delivered.
	Chunks int `json:"chunks"`

	// Fallback is true when the completion service returned no candidates
	// and the canned reply was delivered instead.
	Fallback bool `json:"fallback"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
}
