package app

import (
	"github.com/gin-gonic/gin"

	"github.com/ariabot/aria-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers, mw Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:    handlerset.Auth,
		ChatHandler:    handlerset.Chat,
		MonitorHandler: handlerset.Monitor,
		AuthMiddleware: mw.Auth,
		AllowOrigins:   cfg.AllowOrigins,
	})
}
