package models

import (
	"time"

	"github.com/code-root/AdvancedCouponSystem-sub002/pkg/types"
	"gorm.io/datatypes"
)

// Network is an external affiliate platform. Name is the adapter registry key.
type Network struct {
	ID          string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"column:name;type:varchar(64);not null;uniqueIndex" json:"name"`
	DisplayName string    `gorm:"column:display_name;type:varchar(128);not null" json:"display_name"`
	Active      bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Network) TableName() string { return "networks" }

// NetworkConnection is a stored per-user credential set for one network.
type NetworkConnection struct {
	ID        string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID    string `gorm:"column:user_id;type:varchar(64);not null;index:idx_conn_user_network,priority:1" json:"user_id"`
	NetworkID string `gorm:"column:network_id;type:uuid;not null;index:idx_conn_user_network,priority:2" json:"network_id"`
	Name      string `gorm:"column:name;type:varchar(128);not null" json:"name"`
	// Credentials are adapter-specific fields (API keys, tokens).
	Credentials  datatypes.JSONMap      `gorm:"column:credentials;type:jsonb;default:'{}'" json:"-"`
	Status       types.ConnectionStatus `gorm:"column:status;type:varchar(32);not null;default:'active'" json:"status"`
	LastSyncedAt *time.Time             `gorm:"column:last_synced_at;default:null" json:"last_synced_at"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

func (NetworkConnection) TableName() string { return "network_connections" }

// CredentialMap flattens the jsonb credentials to string values for adapters.
func (c *NetworkConnection) CredentialMap() map[string]string {
	out := make(map[string]string, len(c.Credentials))
	for k, v := range c.Credentials {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
