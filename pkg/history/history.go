// Package history provides the per-identity bounded conversation memory.
//
// The store maps an identity (a channel-qualified sender name, treated as an
// opaque string) to an ordered window of recent turns. Histories are created
// lazily on first contact and live for the lifetime of the store; nothing is
// persisted across process restarts.
//
// The store is exclusively owned by the relay's event loop, which is strictly
// sequential, so no locking is done here. Reimplementing the loop with any
// concurrent dispatch requires wrapping the store first.
package history

import (
	"github.com/papercomputeco/quip/pkg/llm"
)

// MaxMemory is the per-identity history capacity in turns.
const MaxMemory = 10

// Store maps identities to bounded conversation histories.
type Store struct {
	histories map[string][]llm.Turn
}

// NewStore creates an empty conversation store.
func NewStore() *Store {
	return &Store{
		histories: make(map[string][]llm.Turn),
	}
}

// Record appends a turn to the identity's history, creating the history if
// absent. The capacity bound is enforced after the append: an insertion may
// transiently exceed MaxMemory by one element, after which the single oldest
// element is evicted. Both the user-turn and assistant-turn write paths go
// through here, so one full exchange can evict two old turns.
func (s *Store) Record(identity string, role llm.Role, content string) {
	h := append(s.histories[identity], llm.NewTurn(role, content))
	if len(h) > MaxMemory {
		h = h[1:]
	}
	s.histories[identity] = h
}

// HistoryOf returns a snapshot of the identity's history in insertion order.
// ok is false when the identity has never been recorded; callers treat that
// as a contract violation for the turn that triggered the lookup, since a
// user turn is always recorded immediately before any lookup.
func (s *Store) HistoryOf(identity string) (turns []llm.Turn, ok bool) {
	h, ok := s.histories[identity]
	if !ok {
		return nil, false
	}

	turns = make([]llm.Turn, len(h))
	copy(turns, h)
	return turns, true
}

// Identities returns the number of identities with recorded history.
func (s *Store) Identities() int {
	return len(s.histories)
}

// Len returns the number of turns held for the identity, zero if none.
func (s *Store) Len(identity string) int {
	return len(s.histories[identity])
}
