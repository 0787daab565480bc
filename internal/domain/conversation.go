package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationMessage is one turn of a chat session. Append-only; a session is
// the set of rows sharing session_id, ordered by created_at.
type ConversationMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index:idx_conversation_session_created,priority:1" json:"session_id"`

	Role    string `gorm:"not null;column:role" json:"role"`
	Content string `gorm:"type:text;not null;column:content" json:"content"`

	// Detected intent and extracted entities for user turns; empty for
	// assistant turns and plain chat.
	Intent   string         `gorm:"column:intent" json:"intent,omitempty"`
	Entities datatypes.JSON `gorm:"column:entities" json:"entities,omitempty"`

	CreatedAt time.Time `gorm:"not null;index:idx_conversation_session_created,priority:2" json:"created_at"`
}

func (ConversationMessage) TableName() string { return "conversation_message" }

func (m *ConversationMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// UserContext is the one-row-per-user record of preferences and learned
// patterns consumed by the chat composer. Upserted after every turn.
type UserContext struct {
	UserID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	Preferences     datatypes.JSON `gorm:"column:preferences" json:"preferences,omitempty"`
	LearnedPatterns datatypes.JSON `gorm:"column:learned_patterns" json:"learned_patterns,omitempty"`
	LastInteraction time.Time      `gorm:"column:last_interaction" json:"last_interaction"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
}

func (UserContext) TableName() string { return "user_context" }
