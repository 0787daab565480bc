package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClassificationFeedback is the append-only audit trail of user corrections to
// classifier output. The most recent rows per sender feed back into the next
// classification prompt for that sender.
type ClassificationFeedback struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MessageID uuid.UUID `gorm:"type:uuid;not null;index" json:"message_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	OriginalScore  int    `gorm:"not null;column:original_score" json:"original_score"`
	CorrectedScore int    `gorm:"not null;column:corrected_score" json:"corrected_score"`
	FeedbackText   string `gorm:"type:text;column:feedback_text" json:"feedback_text,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (ClassificationFeedback) TableName() string { return "classification_feedback" }

func (f *ClassificationFeedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
