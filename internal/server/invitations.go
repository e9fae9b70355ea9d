package server

import (
	"context"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/teamspace/internal/authorization"
)

type InvitationActionRequest struct {
	InvitationID string `json:"invitationId"`
}

func (s *Server) ListInvitations(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orgID, err := parseID(c.Query("orgId"), "orgId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorize(c, userID, orgID, authorization.ObjectInvitation, authorization.ActionInvitationView); err != nil {
		AbortWithError(c, err)
		return
	}

	invitations, err := s.invitationSvc.ListByOrg(c.Request.Context(), userID, orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

func (s *Server) AcceptInvitation(c *gin.Context) {
	s.invitationAction(c, s.invitationSvc.Accept)
}

func (s *Server) RejectInvitation(c *gin.Context) {
	s.invitationAction(c, s.invitationSvc.Reject)
}

func (s *Server) invitationAction(c *gin.Context, action func(ctx context.Context, actingUserID, invitationID snowflake.ID) error) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req InvitationActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invitationID, err := parseID(req.InvitationID, "invitationId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := action(c.Request.Context(), userID, invitationID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
