// Package relay wires the conversation pipeline to the transport and keeps
// it alive across transient network failures.
//
// One supervisor owns one conversation store for its whole lifetime: the
// store deliberately survives reconnects, so a session dropping mid-chat does
// not wipe anyone's context. Event handling is strictly sequential per
// session; the store is only ever touched from the streaming loop.
package relay

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/quip/pkg/deliver"
	"github.com/papercomputeco/quip/pkg/eventstream"
	"github.com/papercomputeco/quip/pkg/history"
	"github.com/papercomputeco/quip/pkg/irc"
	"github.com/papercomputeco/quip/pkg/llm"
	"github.com/papercomputeco/quip/pkg/prompt"
)

const (
	// fallbackReply is delivered when the completion service returns zero
	// candidates. The store is left untouched on this path.
	fallbackReply = "hrmmm I'm not really sure..."

	// disallowedSender is the sentinel sender identity ignored on the
	// private-message path.
	disallowedSender = "DM"

	// placeholderIdentity keys conversations whose sender metadata is
	// absent or malformed.
	placeholderIdentity = "Luser"
)

// Session is the transport surface the supervisor drives. Satisfied by
// *irc.Session; tests substitute their own.
type Session interface {
	Run(ctx context.Context, onEvent func(irc.InboundEvent)) error
	CurrentNick() string
	Send(target, text string) error
	Close() error
}

// Dialer establishes one transport connection.
type Dialer func(ctx context.Context) (Session, error)

// Config holds the supervisor's tunables.
type Config struct {
	// Channels are the group channels whose messages are considered for
	// address matching.
	Channels []string

	// MaxTokens bounds the completion service's output.
	MaxTokens int

	// SendDelay is the pause between consecutive outbound chunks.
	SendDelay time.Duration

	// ReconnectBackoff is the pause between a session ending and the next
	// connection attempt.
	ReconnectBackoff time.Duration
}

// Supervisor runs the connect-stream-reconnect lifecycle forever.
type Supervisor struct {
	cfg       Config
	dial      Dialer
	completer llm.Completer
	publisher eventstream.Publisher
	store     *history.Store
	logger    *zap.Logger

	status    statusValue
	exchanges int64

	// fatal carries a mid-stream send failure out of the event handler so
	// the session teardown can be attributed to it.
	fatal error
}

// New creates a supervisor. The store is created here and lives until the
// process exits.
func New(cfg Config, dial Dialer, completer llm.Completer, publisher eventstream.Publisher, logger *zap.Logger) *Supervisor {
	if cfg.ReconnectBackoff <= 0 {
		cfg.ReconnectBackoff = 30 * time.Second
	}

	s := &Supervisor{
		cfg:       cfg,
		dial:      dial,
		completer: completer,
		publisher: publisher,
		store:     history.NewStore(),
		logger:    logger,
	}
	s.setStatus(StateIdle, "")

	return s
}

// Run alternates Connecting/Streaming/backoff until the context is canceled.
// There is no retry cap; the supervisor never gives up on its own.
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		if err := s.runSession(ctx); err != nil {
			s.logger.Error("session ended", zap.Error(err))
		}

		s.setStatus(StateIdle, "")
		s.logger.Info("reconnecting",
			zap.Duration("backoff", s.cfg.ReconnectBackoff),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.ReconnectBackoff):
		}
	}
}

// runSession performs one full connect-stream-disconnect cycle. Connect and
// handshake failures are not distinguished from mid-stream failures; both
// end the attempt.
func (s *Supervisor) runSession(ctx context.Context) error {
	s.setStatus(StateConnecting, "")
	s.logger.Info("connecting to server")

	sess, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	s.logger.Info("connected")
	s.setStatus(StateStreaming, sess.CurrentNick())
	s.fatal = nil

	err = sess.Run(ctx, func(ev irc.InboundEvent) {
		s.handleEvent(ctx, sess, ev)
	})
	if s.fatal != nil {
		return s.fatal
	}
	return err
}

// handleEvent applies the address-match filter and, for addressed messages,
// runs the full pipeline. Runs synchronously on the stream's read loop, so
// a slow completion for one event blocks the next by construction.
func (s *Supervisor) handleEvent(ctx context.Context, sess Session, ev irc.InboundEvent) {
	// The server can rename us mid-session; re-read every time.
	nick := sess.CurrentNick()

	if s.isMonitoredChannel(ev.Target) {
		addressPrefix := nick + ": "
		if !strings.HasPrefix(ev.Text, addressPrefix) {
			return
		}

		body := strings.TrimPrefix(ev.Text, addressPrefix)
		identity := deriveIdentity(ev.Sender)
		s.exchange(ctx, sess, identity, ev.Target, body)
		return
	}

	if ev.Target == nick {
		if ev.Sender == "" || ev.Sender == disallowedSender {
			return
		}
		// Private delivery: the reply goes back to the sender directly.
		s.exchange(ctx, sess, ev.Sender, ev.Sender, ev.Text)
	}
}

// exchange runs one inbound turn through the store, the completion service,
// and the delivery path. Completion failures stop the exchange but keep the
// recorded user turn; only transport send failures escalate to the session.
func (s *Supervisor) exchange(ctx context.Context, sess Session, identity, arrivalTarget, body string) {
	started := time.Now()

	s.store.Record(identity, llm.RoleUser, body)

	turns, err := prompt.Build(identity, s.store)
	if err != nil {
		// Contract violation: the user turn was just recorded.
		s.logger.Error("prompt build contract violated",
			zap.String("identity", identity),
			zap.Error(err),
		)
		return
	}

	resp, err := s.completer.Complete(ctx, turns, s.cfg.MaxTokens)
	if err != nil {
		s.logger.Error("completion failed",
			zap.String("identity", identity),
			zap.Error(err),
		)
		return
	}

	reply, ok := resp.FirstChoice()
	if ok {
		s.store.Record(identity, llm.RoleAssistant, reply)
	} else {
		reply = fallbackReply
	}

	plan := deliver.BuildPlan(reply, arrivalTarget, identity)
	pacer := deliver.NewPacer(sess, s.cfg.SendDelay, s.logger)
	if err := pacer.Deliver(plan); err != nil {
		// A failed write means a broken transport: end the session and
		// let the backoff loop bring up a fresh one. The partially-sent
		// plan is abandoned; the recorded turns stay in the store.
		s.logger.Error("delivery failed",
			zap.String("identity", identity),
			zap.Error(err),
		)
		s.fatal = err
		sess.Close()
		return
	}

	s.exchanges++
	s.publishExchange(ctx, identity, arrivalTarget, plan, !ok, started)
	s.setStatus(StateStreaming, sess.CurrentNick())
}

func (s *Supervisor) isMonitoredChannel(target string) bool {
	for _, ch := range s.cfg.Channels {
		if target == ch {
			return true
		}
	}
	return false
}

// deriveIdentity maps the sender prefix to a conversation key. String-unequal
// raw identities are always distinct conversations, even when protocol
// aliasing makes them the same real user; that is a known limitation.
func deriveIdentity(sender string) string {
	if sender == "" {
		return placeholderIdentity
	}
	return sender
}
