package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	models "github.com/code-root/AdvancedCouponSystem-sub002/internal/models"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/config"
	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/tool"
)

// LogChannel writes events to the service log.
type LogChannel struct {
	log *zap.SugaredLogger
}

func (c *LogChannel) Name() string { return "log" }

func (c *LogChannel) Deliver(_ context.Context, e Event) error {
	c.log.Infow("admin_notification", "event", e.Name, "user_id", e.UserID, "message", e.Message)
	return nil
}

// DatabaseChannel persists events as admin_notifications rows.
type DatabaseChannel struct {
	db *gorm.DB
}

func (c *DatabaseChannel) Name() string { return "database" }

func (c *DatabaseChannel) Deliver(ctx context.Context, e Event) error {
	payload := datatypes.JSONMap(e.Payload)
	if payload == nil {
		payload = datatypes.JSONMap{}
	}
	payload["message"] = e.Message

	var userID *string
	if e.UserID != "" {
		userID = &e.UserID
	}
	row := &models.AdminNotification{
		ID:      tool.GenerateUUIDV7(),
		Event:   e.Name,
		UserID:  userID,
		Payload: payload,
	}
	return c.db.WithContext(ctx).Create(row).Error
}

// EmailChannel mails each configured admin recipient. Per-recipient failures
// are logged and the loop continues.
type EmailChannel struct {
	cfg *config.Config
	log *zap.SugaredLogger

	send func(m *gomail.Message) error
}

func NewEmailChannel(cfg *config.Config, log *zap.SugaredLogger) *EmailChannel {
	dialer := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	return &EmailChannel{cfg: cfg, log: log, send: func(m *gomail.Message) error {
		return dialer.DialAndSend(m)
	}}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Deliver(_ context.Context, e Event) error {
	var failed int
	for _, to := range c.cfg.Admin.NotifyEmails {
		m := gomail.NewMessage()
		m.SetHeader("From", c.cfg.SMTP.From)
		m.SetHeader("To", to)
		m.SetHeader("Subject", e.Subject)
		m.SetBody("text/plain", e.Message)
		if err := c.send(m); err != nil {
			failed++
			c.log.Errorw("admin email failed", "to", to, "event", e.Name, "err", err)
		}
	}
	if failed == len(c.cfg.Admin.NotifyEmails) && failed > 0 {
		return fmt.Errorf("all %d admin emails failed", failed)
	}
	return nil
}
