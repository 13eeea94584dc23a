// Package alert delivers short motion notifications through an external
// messaging transport, rate limited by a cooldown window.
package alert

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultCooldown is the minimum interval between two delivered alerts.
const DefaultCooldown = 30 * time.Second

// Dispatcher sends at most one message per cooldown window. Events arriving
// inside the window are dropped, not queued. It is not safe for concurrent
// use; the detection loop is its only caller.
type Dispatcher struct {
	transport Transport
	sender    string
	recipient string
	cooldown  time.Duration
	lastSent  time.Time

	now func() time.Time // stubbed in tests
}

// NewDispatcher builds a dispatcher. An empty recipient disables delivery:
// Notify then always returns false without touching the transport.
func NewDispatcher(transport Transport, sender, recipient string, cooldown time.Duration) *Dispatcher {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Dispatcher{
		transport: transport,
		sender:    sender,
		recipient: recipient,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Notify attempts to deliver message to the configured recipient. It
// returns true only when the transport confirms delivery. The last-sent
// time advances only on success, so a failed attempt does not consume the
// cooldown window.
func (d *Dispatcher) Notify(ctx context.Context, message string) bool {
	if d.recipient == "" {
		return false
	}

	now := d.now()
	if since := now.Sub(d.lastSent); !d.lastSent.IsZero() && since < d.cooldown {
		log.Debug().Dur("since_last", since).Msg("Alert suppressed by cooldown")
		return false
	}

	if err := d.transport.Send(ctx, d.sender, d.recipient, message); err != nil {
		log.Error().Err(err).Str("recipient", d.recipient).Msg("Alert delivery failed")
		return false
	}

	d.lastSent = now
	log.Info().Str("recipient", d.recipient).Msg("Alert delivered")
	return true
}
