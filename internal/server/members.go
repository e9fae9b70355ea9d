package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/teamspace/internal/authorization"
	invitationdomain "github.com/smallbiznis/teamspace/internal/invitation/domain"
)

type InviteMemberRequest struct {
	OrgID string `json:"orgId"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type MemberResponse struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}

func (s *Server) ListMembers(c *gin.Context) {
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

	if err := s.authorize(c, userID, orgID, authorization.ObjectMember, authorization.ActionMemberView); err != nil {
		AbortWithError(c, err)
		return
	}

	members, err := s.organizationSvc.ListMembers(c.Request.Context(), userID, orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	out := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, MemberResponse{
			UserID:      m.UserID.String(),
			Email:       m.Email,
			DisplayName: m.DisplayName,
			Role:        m.Role,
			JoinedAt:    m.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"members": out})
}

// InviteMember is the owner-facing add-member endpoint. It always goes
// through the invitation lifecycle rather than inserting a member row.
func (s *Server) InviteMember(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orgID, err := parseID(req.OrgID, "orgId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorize(c, userID, orgID, authorization.ObjectMember, authorization.ActionMemberInvite); err != nil {
		AbortWithError(c, err)
		return
	}

	inv, err := s.invitationSvc.Invite(c.Request.Context(), userID, invitationdomain.InviteRequest{
		OrgID: orgID,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitation": inv})
}

func (s *Server) RemoveMember(c *gin.Context) {
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
	memberID, err := parseID(c.Query("userId"), "userId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorize(c, userID, orgID, authorization.ObjectMember, authorization.ActionMemberRemove); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.organizationSvc.RemoveMember(c.Request.Context(), userID, orgID, memberID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
