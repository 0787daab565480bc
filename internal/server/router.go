package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/ariabot/aria-backend/internal/handlers"
	"github.com/ariabot/aria-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	ChatHandler    *handlers.ChatHandler
	MonitorHandler *handlers.MonitorHandler
	AuthMiddleware *middleware.AuthMiddleware
	AllowOrigins   []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("aria-backend"))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/refresh", cfg.AuthHandler.Refresh)

	// Protected
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// Chat
	protected.POST("/chat/sessions", cfg.ChatHandler.NewSession)
	protected.POST("/chat/messages", cfg.ChatHandler.SendMessage)
	protected.GET("/chat/sessions/:sessionID/messages", cfg.ChatHandler.History)
	protected.GET("/chat/context", cfg.ChatHandler.GetContext)
	protected.PUT("/chat/preferences", cfg.ChatHandler.UpdatePreferences)
	// Monitoring
	protected.GET("/monitor/messages", cfg.MonitorHandler.ListMessages)
	protected.GET("/monitor/messages/:messageID", cfg.MonitorHandler.GetMessage)
	protected.POST("/monitor/messages/:messageID/read", cfg.MonitorHandler.MarkRead)
	protected.POST("/monitor/messages/:messageID/feedback", cfg.MonitorHandler.SubmitFeedback)
	protected.POST("/monitor/sources/:source/run", cfg.MonitorHandler.TriggerSource)

	return router
}
