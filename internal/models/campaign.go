package models

import (
	"time"

	"gorm.io/datatypes"
)

// Campaign is an advertiser campaign ingested from a network.
// Rows are upserted on (network_id, user_id, external_id).
type Campaign struct {
	ID         string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID     string `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:idx_campaign_ext,priority:1" json:"user_id"`
	NetworkID  string `gorm:"column:network_id;type:uuid;not null;uniqueIndex:idx_campaign_ext,priority:2" json:"network_id"`
	ExternalID string `gorm:"column:external_id;type:varchar(128);not null;uniqueIndex:idx_campaign_ext,priority:3" json:"external_id"`

	Name     string `gorm:"column:name;type:varchar(256);not null" json:"name"`
	Status   string `gorm:"column:status;type:varchar(32);not null;default:'active'" json:"status"`
	TrackURL string `gorm:"column:track_url;type:text" json:"track_url"`
	// CommissionRate is in basis points.
	CommissionRate int64             `gorm:"column:commission_rate;not null;default:0" json:"commission_rate"`
	Payload        datatypes.JSONMap `gorm:"column:payload;type:jsonb;default:'{}'" json:"payload"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Campaign) TableName() string { return "campaigns" }
