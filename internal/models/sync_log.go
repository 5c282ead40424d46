package models

import (
	"time"

	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
	"gorm.io/datatypes"
)

// SyncLog is one sync execution. A row with a nil SyncScheduleID was
// triggered manually. Status only moves forward:
// pending -> processing -> completed | failed.
type SyncLog struct {
	ID             string  `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID         string  `gorm:"column:user_id;type:varchar(64);not null;index:idx_sync_log_user,priority:1" json:"user_id"`
	NetworkID      string  `gorm:"column:network_id;type:uuid;not null" json:"network_id"`
	SyncScheduleID *string `gorm:"column:sync_schedule_id;type:uuid;default:null;index" json:"sync_schedule_id"`

	SyncType types.SyncType      `gorm:"column:sync_type;type:varchar(32);not null" json:"sync_type"`
	Status   types.SyncLogStatus `gorm:"column:status;type:varchar(32);not null;default:'pending'" json:"status"`

	StartedAt       *time.Time `gorm:"column:started_at;default:null" json:"started_at"`
	CompletedAt     *time.Time `gorm:"column:completed_at;default:null" json:"completed_at"`
	DurationSeconds int64      `gorm:"column:duration_seconds;type:bigint;not null;default:0" json:"duration_seconds"`

	CampaignsCount int `gorm:"column:campaigns_count;not null;default:0" json:"campaigns_count"`
	CouponsCount   int `gorm:"column:coupons_count;not null;default:0" json:"coupons_count"`
	PurchasesCount int `gorm:"column:purchases_count;not null;default:0" json:"purchases_count"`

	ErrorMessage *string           `gorm:"column:error_message;type:text;default:null" json:"error_message"`
	Details      datatypes.JSONMap `gorm:"column:details;type:jsonb;default:'{}'" json:"details"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SyncLog) TableName() string { return "sync_logs" }

func (l *SyncLog) IsManual() bool { return l.SyncScheduleID == nil }

// MarkProcessing records the run start. No-op once terminal.
func (l *SyncLog) MarkProcessing(now time.Time) {
	if l.Status.Terminal() {
		return
	}
	l.Status = types.SyncLogStatusProcessing
	l.StartedAt = &now
}

// MarkCompleted finalizes the run with per-type counts.
func (l *SyncLog) MarkCompleted(now time.Time, campaigns, coupons, purchases int) {
	if l.Status.Terminal() {
		return
	}
	l.Status = types.SyncLogStatusCompleted
	l.CampaignsCount = campaigns
	l.CouponsCount = coupons
	l.PurchasesCount = purchases
	l.finish(now)
}

// MarkFailed finalizes the run with an error message.
func (l *SyncLog) MarkFailed(now time.Time, msg string) {
	if l.Status.Terminal() {
		return
	}
	l.Status = types.SyncLogStatusFailed
	l.ErrorMessage = &msg
	l.finish(now)
}

func (l *SyncLog) finish(now time.Time) {
	l.CompletedAt = &now
	if l.StartedAt != nil {
		l.DurationSeconds = int64(now.Sub(*l.StartedAt).Seconds())
	}
}

func (l *SyncLog) TotalRecords() int {
	return l.CampaignsCount + l.CouponsCount + l.PurchasesCount
}
