package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/config"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/logctx"
)

// Event is one admin-facing notification about a business transition.
type Event struct {
	// Name is a dotted event id, e.g. "subscription.canceled".
	Name    string         `json:"name"`
	UserID  string         `json:"user_id"`
	Subject string         `json:"subject"`
	Message string         `json:"message"`
	Payload map[string]any `json:"payload"`
}

// Channel delivers events to one destination. A channel owns its own failure
// handling; the bus only logs what it returns.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, e Event) error
}

// Bus fans events out to all subscribed channels. Delivery is strictly
// best-effort: a failing channel is logged and skipped, and Publish never
// reports an error to the business code that emitted the event.
type Bus struct {
	log      *zap.SugaredLogger
	channels []Channel
}

func NewBus(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger) *Bus {
	channels := []Channel{
		&LogChannel{log: log},
		&DatabaseChannel{db: db},
	}
	if cfg.SMTP.Enabled {
		channels = append(channels, NewEmailChannel(cfg, log))
	}
	return &Bus{log: log, channels: channels}
}

func (b *Bus) Publish(ctx context.Context, e Event) {
	for _, ch := range b.channels {
		if err := b.deliver(ctx, ch, e); err != nil {
			logctx.FromCtx(ctx, b.log).Errorw("notification delivery failed",
				"channel", ch.Name(), "event", e.Name, "err", err)
		}
	}
}

func (b *Bus) deliver(ctx context.Context, ch Channel, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{r}
		}
	}()
	return ch.Deliver(ctx, e)
}

type panicError struct{ v any }

func (p panicError) Error() string { return fmt.Sprintf("channel panicked: %v", p.v) }
