package repos

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ariabot/aria-backend/internal/domain"
	"github.com/ariabot/aria-backend/internal/pkg/dbctx"
	"github.com/ariabot/aria-backend/internal/pkg/logger"
)

// SenderFeedback is a feedback row joined with the sender of the message it
// corrected, for rendering the "learning from past feedback" prompt block.
type SenderFeedback struct {
	Sender         string
	OriginalScore  int
	CorrectedScore int
	FeedbackText   string
}

type FeedbackRepo interface {
	Create(dbc dbctx.Context, row *domain.ClassificationFeedback) (*domain.ClassificationFeedback, error)
	// ListRecentBySender returns the most recent corrections whose associated
	// message's sender matches the given sender, case-insensitive, either way
	// round (substring in both directions), newest first.
	ListRecentBySender(dbc dbctx.Context, userID uuid.UUID, sender string, limit int) ([]SenderFeedback, error)
}

type feedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeedbackRepo(db *gorm.DB, log *logger.Logger) FeedbackRepo {
	return &feedbackRepo{db: db, log: log.With("repo", "FeedbackRepo")}
}

func (r *feedbackRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *feedbackRepo) Create(dbc dbctx.Context, row *domain.ClassificationFeedback) (*domain.ClassificationFeedback, error) {
	if row == nil {
		return nil, fmt.Errorf("missing feedback")
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *feedbackRepo) ListRecentBySender(dbc dbctx.Context, userID uuid.UUID, sender string, limit int) ([]SenderFeedback, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	sender = strings.ToLower(strings.TrimSpace(sender))
	if sender == "" {
		return []SenderFeedback{}, nil
	}
	if limit <= 0 || limit > 20 {
		limit = 3
	}

	pattern := "%" + sender + "%"
	var out []SenderFeedback
	err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.ClassificationFeedback{}).
		Select("monitored_message.sender AS sender, classification_feedback.original_score, classification_feedback.corrected_score, classification_feedback.feedback_text").
		Joins("JOIN monitored_message ON monitored_message.id = classification_feedback.message_id").
		Where("classification_feedback.user_id = ?", userID).
		Where("LOWER(monitored_message.sender) LIKE ? OR ? LIKE '%' || LOWER(monitored_message.sender) || '%'", pattern, sender).
		Order("classification_feedback.created_at DESC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
