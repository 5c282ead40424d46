package notify

import (
	"context"
	"errors"
	"testing"

	models "github.com/code-root/AdvancedCouponSystem-sub002/internal/models"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type recordingChannel struct {
	name   string
	events []Event
	err    error
	panics bool
}

func (c *recordingChannel) Name() string { return c.name }

func (c *recordingChannel) Deliver(_ context.Context, e Event) error {
	if c.panics {
		panic("channel blew up")
	}
	c.events = append(c.events, e)
	return c.err
}

func TestPublish_FansOutToAllChannels(t *testing.T) {
	a := &recordingChannel{name: "a"}
	b := &recordingChannel{name: "b"}
	bus := &Bus{log: zap.NewNop().Sugar(), channels: []Channel{a, b}}

	bus.Publish(context.Background(), Event{Name: "subscription.created", UserID: "user-1"})

	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	require.Equal(t, "subscription.created", a.events[0].Name)
}

func TestPublish_FailingChannelDoesNotStopOthers(t *testing.T) {
	failing := &recordingChannel{name: "bad", err: errors.New("boom")}
	ok := &recordingChannel{name: "ok"}
	bus := &Bus{log: zap.NewNop().Sugar(), channels: []Channel{failing, ok}}

	bus.Publish(context.Background(), Event{Name: "subscription.canceled"})

	require.Len(t, ok.events, 1)
}

func TestPublish_PanickingChannelIsContained(t *testing.T) {
	panicking := &recordingChannel{name: "panic", panics: true}
	ok := &recordingChannel{name: "ok"}
	bus := &Bus{log: zap.NewNop().Sugar(), channels: []Channel{panicking, ok}}

	require.NotPanics(t, func() {
		bus.Publish(context.Background(), Event{Name: "subscription.expired"})
	})
	require.Len(t, ok.events, 1)
}

func TestDatabaseChannel_PersistsNotification(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AdminNotification{}))

	ch := &DatabaseChannel{db: db}
	err = ch.Deliver(context.Background(), Event{
		Name:    "subscription.plan_changed",
		UserID:  "user-1",
		Message: "plan changed to pro",
		Payload: map[string]any{"plan_id": "p-1"},
	})
	require.NoError(t, err)

	var row models.AdminNotification
	require.NoError(t, db.First(&row).Error)
	require.Equal(t, "subscription.plan_changed", row.Event)
	require.NotNil(t, row.UserID)
	require.Equal(t, "user-1", *row.UserID)
	require.Equal(t, "plan changed to pro", row.Payload["message"])
	require.Equal(t, "p-1", row.Payload["plan_id"])
}

func TestDatabaseChannel_SystemEventHasNoUser(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AdminNotification{}))

	ch := &DatabaseChannel{db: db}
	require.NoError(t, ch.Deliver(context.Background(), Event{Name: "schedules.daily_reset"}))

	var row models.AdminNotification
	require.NoError(t, db.First(&row).Error)
	require.Nil(t, row.UserID)
}

func emailTestConfig(recipients ...string) *config.Config {
	cfg := &config.Config{}
	cfg.SMTP.From = "noreply@example.com"
	cfg.Admin.NotifyEmails = recipients
	return cfg
}

func TestEmailChannel_ToleratesPartialFailure(t *testing.T) {
	var sent []string
	ch := &EmailChannel{
		cfg: emailTestConfig("a@example.com", "b@example.com"),
		log: zap.NewNop().Sugar(),
		send: func(m *gomail.Message) error {
			to := m.GetHeader("To")[0]
			sent = append(sent, to)
			if to == "a@example.com" {
				return errors.New("mailbox full")
			}
			return nil
		},
	}

	err := ch.Deliver(context.Background(), Event{Name: "subscription.created", Subject: "New subscription"})
	require.NoError(t, err)
	require.Equal(t, []string{"a@example.com", "b@example.com"}, sent)
}

func TestEmailChannel_AllRecipientsFailed(t *testing.T) {
	ch := &EmailChannel{
		cfg: emailTestConfig("a@example.com", "b@example.com"),
		log: zap.NewNop().Sugar(),
		send: func(*gomail.Message) error {
			return errors.New("smtp down")
		},
	}

	err := ch.Deliver(context.Background(), Event{Name: "subscription.created"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "all 2 admin emails failed")
}

func TestEmailChannel_NoRecipientsConfigured(t *testing.T) {
	ch := &EmailChannel{
		cfg: emailTestConfig(),
		log: zap.NewNop().Sugar(),
		send: func(*gomail.Message) error {
			t.Fatal("should not send")
			return nil
		},
	}
	require.NoError(t, ch.Deliver(context.Background(), Event{Name: "noop"}))
}
