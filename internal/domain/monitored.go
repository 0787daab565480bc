package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SourceEmail  = "email"
	SourceSocial = "social"

	CategoryHigh   = "high"
	CategoryMedium = "medium"
	CategoryLow    = "low"
)

// MonitoredMessage is a classified inbound message from an external source.
// (user_id, source, external_message_id) is the dedup key: the unique index is
// the arbiter that keeps one cycle from inserting the same item twice.
type MonitoredMessage struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index;index:idx_monitored_dedup,unique,priority:1" json:"user_id"`

	Source            string `gorm:"not null;index:idx_monitored_dedup,unique,priority:2" json:"source"`
	ExternalMessageID string `gorm:"not null;column:external_message_id;index:idx_monitored_dedup,unique,priority:3" json:"external_message_id"`

	Sender  string `gorm:"not null;index" json:"sender"`
	Subject string `gorm:"column:subject" json:"subject,omitempty"`
	Content string `gorm:"type:text;not null" json:"content"`

	ImportanceScore int    `gorm:"not null;column:importance_score" json:"importance_score"`
	Category        string `gorm:"not null;index" json:"category"`
	Reasoning       string `gorm:"type:text;column:reasoning" json:"reasoning,omitempty"`

	IsRead   bool           `gorm:"not null;default:false;column:is_read" json:"is_read"`
	Metadata datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (MonitoredMessage) TableName() string { return "monitored_message" }

func (m *MonitoredMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// SourceSyncState records the last completed monitoring cycle per user+source.
type SourceSyncState struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Source     string    `gorm:"primaryKey" json:"source"`
	LastSyncAt time.Time `gorm:"column:last_sync_at" json:"last_sync_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (SourceSyncState) TableName() string { return "source_sync_state" }
