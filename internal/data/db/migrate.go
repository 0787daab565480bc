package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/ariabot/aria-backend/internal/domain"
)

// AutoMigrateAll migrates every persisted entity. Order matters only for
// readability; FK constraints are disabled during migration.
func AutoMigrateAll(gdb *gorm.DB) error {
	models := []interface{}{
		&domain.User{},
		&domain.UserToken{},
		&domain.ConversationMessage{},
		&domain.UserContext{},
		&domain.MonitoredMessage{},
		&domain.SourceSyncState{},
		&domain.ClassificationFeedback{},
	}
	if err := gdb.AutoMigrate(models...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	return AutoMigrateAll(s.db)
}
