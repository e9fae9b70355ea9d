package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	joinrequestdomain "github.com/smallbiznis/teamspace/internal/joinrequest/domain"
)

type JoinOrgRequest struct {
	Slug string `json:"slug"`
}

type ResolveJoinRequestBody struct {
	NotificationID string `json:"notificationId"`
	Action         string `json:"action"`
}

func (s *Server) JoinOrg(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req JoinOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Slug) == "" {
		AbortWithError(c, newValidationError("slug", "invalid_slug", "invalid slug"))
		return
	}

	if err := s.joinRequestSvc.RequestJoin(c.Request.Context(), userID, req.Slug); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "pending", "message": "Your request to join has been sent to the organization owner."})
}

func (s *Server) ResolveJoinRequest(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req ResolveJoinRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	notificationID, err := parseID(req.NotificationID, "notificationId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.joinRequestSvc.Resolve(c.Request.Context(), userID, notificationID, req.Action)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"action":       result.Action,
		"organization": gin.H{"id": result.OrganizationID, "name": result.OrganizationName},
	})
}

// JoinRequestAction serves the accept/reject links in the owner's email. The
// opaque notification id is the capability; there is no session. The caller
// ends up on the app regardless of the outcome.
func (s *Server) JoinRequestAction(c *gin.Context) {
	notificationID, err := parseID(c.Query("notification_id"), "notification_id")
	if err != nil {
		notificationID, err = parseID(c.Query("notificationId"), "notificationId")
	}
	if err != nil {
		c.Redirect(http.StatusFound, s.cfg.LinkURL("/", url.Values{"join_request": []string{"invalid"}}))
		return
	}

	action := strings.TrimSpace(c.Query("action"))
	result, err := s.joinRequestSvc.ResolveByLink(c.Request.Context(), notificationID, action)
	if err != nil {
		outcome := "error"
		switch {
		case errors.Is(err, joinrequestdomain.ErrAlreadyResolved):
			outcome = "already_processed"
		case errors.Is(err, joinrequestdomain.ErrRequestExpired):
			outcome = "expired"
		case errors.Is(err, joinrequestdomain.ErrInvalidAction), errors.Is(err, joinrequestdomain.ErrNotJoinRequest):
			outcome = "invalid"
		}
		c.Redirect(http.StatusFound, s.cfg.LinkURL("/", url.Values{"join_request": []string{outcome}}))
		return
	}

	c.Redirect(http.StatusFound, s.cfg.LinkURL("/", url.Values{
		"join_request": []string{result.Action + "ed"},
		"org":          []string{result.OrganizationID},
	}))
}
