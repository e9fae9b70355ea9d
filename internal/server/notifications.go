package server

import (
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type MarkNotificationsReadRequest struct {
	IDs []string `json:"ids"`
	All bool     `json:"all"`
}

func (s *Server) ListNotifications(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	unreadOnly, _ := strconv.ParseBool(c.Query("unread"))

	notifications, err := s.notificationSvc.List(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (s *Server) MarkNotificationsRead(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req MarkNotificationsReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if req.All {
		if err := s.notificationSvc.MarkAllRead(c.Request.Context(), userID); err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	if len(req.IDs) == 0 {
		AbortWithError(c, newValidationError("ids", "invalid_ids", "invalid ids"))
		return
	}

	ids := make([]snowflake.ID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := parseID(raw, "ids")
		if err != nil {
			AbortWithError(c, err)
			return
		}
		ids = append(ids, id)
	}

	if err := s.notificationSvc.MarkRead(c.Request.Context(), userID, ids); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
