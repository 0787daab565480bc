package repos

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ariabot/aria-backend/internal/domain"
	"github.com/ariabot/aria-backend/internal/pkg/dbctx"
	"github.com/ariabot/aria-backend/internal/pkg/logger"
)

type ConversationRepo interface {
	CreateMessages(dbc dbctx.Context, rows []*domain.ConversationMessage) ([]*domain.ConversationMessage, error)
	ListBySession(dbc dbctx.Context, sessionID uuid.UUID, limit int) ([]*domain.ConversationMessage, error)
	ListRecent(dbc dbctx.Context, sessionID uuid.UUID, limit int) ([]*domain.ConversationMessage, error)
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, log *logger.Logger) ConversationRepo {
	return &conversationRepo{db: db, log: log.With("repo", "ConversationRepo")}
}

func (r *conversationRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *conversationRepo) CreateMessages(dbc dbctx.Context, rows []*domain.ConversationMessage) ([]*domain.ConversationMessage, error) {
	if len(rows) == 0 {
		return []*domain.ConversationMessage{}, nil
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *conversationRepo) ListBySession(dbc dbctx.Context, sessionID uuid.UUID, limit int) ([]*domain.ConversationMessage, error) {
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("missing session_id")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []*domain.ConversationMessage
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.ConversationMessage{}).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	// Normalize to ASC for clients.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *conversationRepo) ListRecent(dbc dbctx.Context, sessionID uuid.UUID, limit int) ([]*domain.ConversationMessage, error) {
	if sessionID == uuid.Nil {
		return nil, fmt.Errorf("missing session_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	var out []*domain.ConversationMessage
	if err := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.ConversationMessage{}).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

type UserContextRepo interface {
	Get(dbc dbctx.Context, userID uuid.UUID) (*domain.UserContext, error)
	Upsert(dbc dbctx.Context, uc *domain.UserContext) error
}

type userContextRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserContextRepo(db *gorm.DB, log *logger.Logger) UserContextRepo {
	return &userContextRepo{db: db, log: log.With("repo", "UserContextRepo")}
}

func (r *userContextRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

// Get returns nil (no error) when the user has no context row yet.
func (r *userContextRepo) Get(dbc dbctx.Context, userID uuid.UUID) (*domain.UserContext, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	var out domain.UserContext
	err := r.tx(dbc).WithContext(dbc.Ctx).First(&out, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userContextRepo) Upsert(dbc dbctx.Context, uc *domain.UserContext) error {
	if uc == nil || uc.UserID == uuid.Nil {
		return fmt.Errorf("missing user_id")
	}
	uc.UpdatedAt = time.Now().UTC()
	return r.tx(dbc).WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"preferences", "learned_patterns", "last_interaction", "updated_at"}),
		}).
		Create(uc).Error
}
