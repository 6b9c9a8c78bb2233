package deliver

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultDelay is the default pause between consecutive sends, tuned to stay
// under typical IRC server flood limits.
const DefaultDelay = 750 * time.Millisecond

// Sender is the outbound half of the transport consumed by the Pacer.
type Sender interface {
	Send(target, text string) error
}

// Pacer delivers a plan's sends strictly in order with a fixed delay between
// consecutive sends. No reordering, no batching, no parallel sends.
type Pacer struct {
	sender Sender
	delay  time.Duration
	logger *zap.Logger
}

// NewPacer creates a pacer over the given sender. A non-positive delay falls
// back to DefaultDelay.
func NewPacer(sender Sender, delay time.Duration, logger *zap.Logger) *Pacer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Pacer{
		sender: sender,
		delay:  delay,
		logger: logger,
	}
}

// Deliver sends each message of the plan in sequence. A transport failure
// aborts the remaining plan and propagates; a broken transport cannot
// usefully retry individual writes, so that is the session's problem.
// Already-sent messages are not rolled back.
func (p *Pacer) Deliver(plan Plan) error {
	for i, send := range plan.Sends {
		if i > 0 {
			time.Sleep(p.delay)
		}

		p.logger.Debug("sending chunk",
			zap.String("target", send.Target),
			zap.Int("index", i),
			zap.Int("chars", len([]rune(send.Text))),
		)

		if err := p.sender.Send(send.Target, send.Text); err != nil {
			return fmt.Errorf("sending chunk %d/%d to %s: %w", i+1, len(plan.Sends), send.Target, err)
		}
	}

	return nil
}
