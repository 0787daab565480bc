package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ariabot/aria-backend/internal/middleware"
	"github.com/ariabot/aria-backend/internal/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (ch *ChatHandler) NewSession(c *gin.Context) {
	if _, ok := middleware.UserIDFrom(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
		return
	}
	RespondOK(c, gin.H{"session_id": ch.chatService.NewSession().String()})
}

func (ch *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
		return
	}
	var req struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	var sessionID uuid.UUID
	if req.SessionID != "" {
		parsed, err := uuid.Parse(req.SessionID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session_id"})
			return
		}
		sessionID = parsed
	}
	turn, err := ch.chatService.HandleMessage(c.Request.Context(), userID, sessionID, req.Message)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "chat_failed", err)
		return
	}
	RespondOK(c, turn)
}

func (ch *ChatHandler) History(c *gin.Context) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
		return
	}
	sessionID, err := uuid.Parse(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session_id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := ch.chatService.History(c.Request.Context(), userID, sessionID, limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "history_failed", err)
		return
	}
	RespondOK(c, gin.H{"messages": rows})
}

func (ch *ChatHandler) GetContext(c *gin.Context) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
		return
	}
	uc, err := ch.chatService.GetUserContext(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "context_failed", err)
		return
	}
	if uc == nil {
		RespondOK(c, gin.H{})
		return
	}
	RespondOK(c, uc)
}

func (ch *ChatHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
		return
	}
	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := ch.chatService.UpdatePreferences(c.Request.Context(), userID, req); err != nil {
		RespondError(c, http.StatusInternalServerError, "preferences_failed", err)
		return
	}
	RespondOK(c, gin.H{"message": "preferences updated"})
}
