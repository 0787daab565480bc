package app

import (
	"gorm.io/gorm"

	"github.com/ariabot/aria-backend/internal/pkg/logger"
	"github.com/ariabot/aria-backend/internal/repos"
)

type Repos struct {
	User             repos.UserRepo
	UserToken        repos.UserTokenRepo
	Conversation     repos.ConversationRepo
	UserContext      repos.UserContextRepo
	MonitoredMessage repos.MonitoredMessageRepo
	SyncState        repos.SyncStateRepo
	Feedback         repos.FeedbackRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:             repos.NewUserRepo(db, log),
		UserToken:        repos.NewUserTokenRepo(db, log),
		Conversation:     repos.NewConversationRepo(db, log),
		UserContext:      repos.NewUserContextRepo(db, log),
		MonitoredMessage: repos.NewMonitoredMessageRepo(db, log),
		SyncState:        repos.NewSyncStateRepo(db, log),
		Feedback:         repos.NewFeedbackRepo(db, log),
	}
}
