package app

import (
	"github.com/ariabot/aria-backend/internal/handlers"
	"github.com/ariabot/aria-backend/internal/pkg/logger"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Chat    *handlers.ChatHandler
	Monitor *handlers.MonitorHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:    handlers.NewAuthHandler(serviceset.Auth),
		Chat:    handlers.NewChatHandler(serviceset.Chat),
		Monitor: handlers.NewMonitorHandler(serviceset.Monitor),
	}
}
