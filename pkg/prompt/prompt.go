// Package prompt builds the exact turn sequence sent to the completion
// service for one inbound exchange.
package prompt

import (
	"errors"
	"fmt"

	"github.com/papercomputeco/quip/pkg/history"
	"github.com/papercomputeco/quip/pkg/llm"
)

// ErrNoHistory indicates Build was invoked for an identity with no recorded
// history. The relay records the triggering user turn before building, so
// hitting this is a programming-contract violation, not a user condition.
var ErrNoHistory = errors.New("no recorded history for identity")

// directive is the persona instruction sent as the leading system turn.
// The %s is the identity of the sender whose message triggered the exchange.
const directive = "You are an IRC chat bot. Your name is quip. Your job is to " +
	"respond to other members of your channel in a funny and humorous manner. " +
	"You are supposed to make people laugh. You should be silly, funny, stupid, " +
	"irreverent, witty, likable, and fun. Your responses don't have to make " +
	"sense but they should make people laugh. Your most recent message is " +
	"from: %s. Make sure you respond to them."

// Build returns the request payload for the identity: a freshly constructed
// system directive followed by the identity's entire stored history in order.
// The directive is reconstructed on every call and never written back into
// the store, so it is invisible to future turns.
func Build(identity string, store *history.Store) ([]llm.Turn, error) {
	stored, ok := store.HistoryOf(identity)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHistory, identity)
	}

	turns := make([]llm.Turn, 0, len(stored)+1)
	turns = append(turns, llm.NewTurn(llm.RoleSystem, fmt.Sprintf(directive, identity)))
	turns = append(turns, stored...)

	return turns, nil
}
