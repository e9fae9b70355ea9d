package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/teamspace/internal/authorization"
	"github.com/smallbiznis/teamspace/internal/organization/domain"
)

type CreateOrgRequest struct {
	Name string `json:"name"`
}

type DeleteOrgRequest struct {
	OrgID    string `json:"orgId"`
	Password string `json:"password"`
}

func (s *Server) CreateOrg(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	org, err := s.organizationSvc.Create(c.Request.Context(), userID, domain.CreateOrganizationRequest{Name: req.Name})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organization": org})
}

func (s *Server) MeOrgs(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orgs, err := s.organizationSvc.ListOrganizationsByUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}

func (s *Server) GetOrgBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		AbortWithError(c, newValidationError("slug", "invalid_slug", "invalid slug"))
		return
	}

	org, err := s.organizationSvc.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organization": org})
}

func (s *Server) DeleteOrg(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req DeleteOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orgID, err := parseID(req.OrgID, "orgId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorize(c, userID, orgID, authorization.ObjectOrganization, authorization.ActionOrganizationDelete); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.organizationSvc.Delete(c.Request.Context(), userID, orgID, req.Password); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) authorize(c *gin.Context, userID, orgID snowflake.ID, object, action string) error {
	return s.authzSvc.Authorize(c.Request.Context(), "user:"+userID.String(), orgID.String(), object, action)
}

func parseID(raw, field string) (snowflake.ID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, newValidationError(field, "invalid_"+field, "invalid "+field)
	}
	id, err := snowflake.ParseString(trimmed)
	if err != nil {
		return 0, newValidationError(field, "invalid_"+field, "invalid "+field)
	}
	return id, nil
}
