package repos

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ariabot/aria-backend/internal/domain"
	"github.com/ariabot/aria-backend/internal/pkg/dbctx"
	"github.com/ariabot/aria-backend/internal/pkg/logger"
)

type UserTokenRepo interface {
	Create(dbc dbctx.Context, token *domain.UserToken) (*domain.UserToken, error)
	GetByHash(dbc dbctx.Context, hash string) (*domain.UserToken, error)
	Revoke(dbc dbctx.Context, id uuid.UUID) error
	RevokeAllForUser(dbc dbctx.Context, userID uuid.UUID) error
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, log *logger.Logger) UserTokenRepo {
	return &userTokenRepo{db: db, log: log.With("repo", "UserTokenRepo")}
}

func (r *userTokenRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *userTokenRepo) Create(dbc dbctx.Context, token *domain.UserToken) (*domain.UserToken, error) {
	if token == nil {
		return nil, fmt.Errorf("missing token")
	}
	if err := r.tx(dbc).WithContext(dbc.Ctx).Create(token).Error; err != nil {
		return nil, err
	}
	return token, nil
}

func (r *userTokenRepo) GetByHash(dbc dbctx.Context, hash string) (*domain.UserToken, error) {
	if hash == "" {
		return nil, fmt.Errorf("missing token_hash")
	}
	var out domain.UserToken
	if err := r.tx(dbc).WithContext(dbc.Ctx).First(&out, "token_hash = ?", hash).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userTokenRepo) Revoke(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing token_id")
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.UserToken{}).
		Where("id = ?", id).
		Update("revoked", true).Error
}

func (r *userTokenRepo) RevokeAllForUser(dbc dbctx.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return fmt.Errorf("missing user_id")
	}
	return r.tx(dbc).WithContext(dbc.Ctx).
		Model(&domain.UserToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}
