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

type MonitoredMessageQuery struct {
	UserID   uuid.UUID
	Source   string
	Category string
	Unread   bool
	Limit    int
}

type MonitoredMessageRepo interface {
	// Insert is a no-op when the (user_id, source, external_message_id) row
	// already exists; the bool reports whether a row was actually written.
	Insert(dbc dbctx.Context, msg *domain.MonitoredMessage) (bool, error)
	Exists(dbc dbctx.Context, userID uuid.UUID, source, externalID string) (bool, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.MonitoredMessage, error)
	List(dbc dbctx.Context, q MonitoredMessageQuery) ([]*domain.MonitoredMessage, error)
	UpdateScore(dbc dbctx.Context, id uuid.UUID, score int, category string) error
	MarkRead(dbc dbctx.Context, id uuid.UUID) error
}

type monitoredMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMonitoredMessageRepo(db *gorm.DB, log *logger.Logger) MonitoredMessageRepo {
	return &monitoredMessageRepo{db: db, log: log.With("repo", "MonitoredMessageRepo")}
}

func (r *monitoredMessageRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *monitoredMessageRepo) Insert(dbc dbctx.Context, msg *domain.MonitoredMessage) (bool, error) {
	if msg == nil {
		return false, fmt.Errorf("missing message")
	}
	if msg.UserID == uuid.Nil || msg.Source == "" || msg.ExternalMessageID == "" {
		return false, fmt.Errorf("missing dedup key fields")
	}
	// The unique index arbitrates under concurrency; DO NOTHING keeps a lost
	// race from surfacing as an error.
	res := r.tx(dbc).WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"}, {Name: "source"}, {Name: "external_message_id"},
			},
			DoNothing: true,
		}).
		Create(msg)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *monitoredMessageRepo) Exists(dbc dbctx.Context, userID uuid.UUID, source, externalID string) (bool, error) {
	if userID == uuid.Nil || source == "" || externalID == "" {
		return false, fmt.Errorf("missing dedup key fields")
	}
	var out domain.MonitoredMessage
	err := r.tx(dbc).WithContext(dbc.Ctx).
		Select("id").
		First(&out, "user_id = ? AND source = ? AND external_message_id = ?", userID, source, externalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *monitoredMessageRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.MonitoredMessage, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing message_id")
	}
	var out domain.MonitoredMessage
	if err := r.tx(dbc).WithContext(dbc.Ctx).First(&out, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *monitoredMessageRepo) List(dbc dbctx.Context, q MonitoredMessageQuery) ([]*domain.MonitoredMessage, error) {
	if q.UserID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}
	tx := r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.MonitoredMessage{}).
		Where("user_id = ?", q.UserID)
	if q.Source != "" {
		tx = tx.Where("source = ?", q.Source)
	}
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.Unread {
		tx = tx.Where("is_read = ?", false)
	}
	var out []*domain.MonitoredMessage
	if err := tx.Order("created_at DESC").Limit(q.Limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *monitoredMessageRepo) UpdateScore(dbc dbctx.Context, id uuid.UUID, score int, category string) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing message_id")
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.MonitoredMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"importance_score": score,
			"category":         category,
			"updated_at":       time.Now().UTC(),
		}).Error
}

func (r *monitoredMessageRepo) MarkRead(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing message_id")
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.MonitoredMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_read":    true,
			"updated_at": time.Now().UTC(),
		}).Error
}

type SyncStateRepo interface {
	Get(dbc dbctx.Context, userID uuid.UUID, source string) (*domain.SourceSyncState, error)
	Upsert(dbc dbctx.Context, userID uuid.UUID, source string, syncedAt time.Time) error
}

type syncStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSyncStateRepo(db *gorm.DB, log *logger.Logger) SyncStateRepo {
	return &syncStateRepo{db: db, log: log.With("repo", "SyncStateRepo")}
}

func (r *syncStateRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *syncStateRepo) Get(dbc dbctx.Context, userID uuid.UUID, source string) (*domain.SourceSyncState, error) {
	if userID == uuid.Nil || source == "" {
		return nil, fmt.Errorf("missing sync state key")
	}
	var out domain.SourceSyncState
	err := r.tx(dbc).WithContext(dbc.Ctx).First(&out, "user_id = ? AND source = ?", userID, source).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *syncStateRepo) Upsert(dbc dbctx.Context, userID uuid.UUID, source string, syncedAt time.Time) error {
	if userID == uuid.Nil || source == "" {
		return fmt.Errorf("missing sync state key")
	}
	row := &domain.SourceSyncState{
		UserID:     userID,
		Source:     source,
		LastSyncAt: syncedAt,
		UpdatedAt:  time.Now().UTC(),
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "source"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_sync_at", "updated_at"}),
		}).
		Create(row).Error
}
