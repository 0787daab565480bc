package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ariabot/aria-backend/internal/middleware"
	"github.com/ariabot/aria-backend/internal/repos"
	"github.com/ariabot/aria-backend/internal/services"
)

type MonitorHandler struct {
	monitorService services.MonitorService
}

func NewMonitorHandler(monitorService services.MonitorService) *MonitorHandler {
	return &MonitorHandler{monitorService: monitorService}
}

func (mh *MonitorHandler) ListMessages(c *gin.Context) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	q := repos.MonitoredMessageQuery{
		UserID:   userID,
		Source:   c.Query("source"),
		Category: c.Query("category"),
		Unread:   c.Query("unread") == "true",
		Limit:    limit,
	}
	rows, err := mh.monitorService.ListMessages(c.Request.Context(), q)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"messages": rows})
}

func (mh *MonitorHandler) GetMessage(c *gin.Context) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
		return
	}
	messageID, err := uuid.Parse(c.Param("messageID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message_id"})
		return
	}
	msg, err := mh.monitorService.GetMessage(c.Request.Context(), userID, messageID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "not_found", err)
		return
	}
	RespondOK(c, msg)
}

func (mh *MonitorHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
		return
	}
	messageID, err := uuid.Parse(c.Param("messageID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message_id"})
		return
	}
	if err := mh.monitorService.MarkRead(c.Request.Context(), userID, messageID); err != nil {
		RespondError(c, http.StatusNotFound, "not_found", err)
		return
	}
	RespondOK(c, gin.H{"message": "marked read"})
}

func (mh *MonitorHandler) SubmitFeedback(c *gin.Context) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
		return
	}
	messageID, err := uuid.Parse(c.Param("messageID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message_id"})
		return
	}
	var req struct {
		CorrectedScore int    `json:"corrected_score"`
		FeedbackText   string `json:"feedback_text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	row, err := mh.monitorService.RecordFeedback(c.Request.Context(), userID, messageID, req.CorrectedScore, req.FeedbackText)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "feedback_failed", err)
		return
	}
	RespondOK(c, row)
}

func (mh *MonitorHandler) TriggerSource(c *gin.Context) {
	if _, ok := middleware.UserIDFrom(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
		return
	}
	source := c.Param("source")
	if err := mh.monitorService.TriggerSource(c.Request.Context(), source); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	RespondOK(c, gin.H{
		"message":  "cycle triggered",
		"next_due": mh.monitorService.NextDue(source),
	})
}
