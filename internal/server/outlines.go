package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/teamspace/internal/authorization"
	"github.com/smallbiznis/teamspace/internal/outline/domain"
)

type CreateOutlineRequest struct {
	OrgID       string `json:"orgId"`
	Header      string `json:"header"`
	SectionType string `json:"section_type"`
	Status      string `json:"status"`
	Target      int    `json:"target"`
	Limit       int    `json:"limit"`
	Reviewer    string `json:"reviewer"`
}

type PatchOutlineRequest struct {
	Header      *string `json:"header"`
	SectionType *string `json:"section_type"`
	Status      *string `json:"status"`
	Target      *int    `json:"target"`
	Limit       *int    `json:"limit"`
	Reviewer    *string `json:"reviewer"`
}

func (s *Server) ListOutlines(c *gin.Context) {
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

	if err := s.authorize(c, userID, orgID, authorization.ObjectOutline, authorization.ActionOutlineView); err != nil {
		AbortWithError(c, err)
		return
	}

	outlines, err := s.outlineSvc.ListByOrg(c.Request.Context(), userID, orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"outlines": outlines})
}

func (s *Server) CreateOutline(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req CreateOutlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orgID, err := parseID(req.OrgID, "orgId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorize(c, userID, orgID, authorization.ObjectOutline, authorization.ActionOutlineCreate); err != nil {
		AbortWithError(c, err)
		return
	}

	outline, err := s.outlineSvc.Create(c.Request.Context(), userID, domain.CreateRequest{
		OrgID:       orgID,
		Header:      req.Header,
		SectionType: req.SectionType,
		Status:      req.Status,
		Target:      req.Target,
		Limit:       req.Limit,
		Reviewer:    req.Reviewer,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"outline": outline})
}

func (s *Server) PatchOutline(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	outlineID, err := parseID(c.Param("id"), "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req PatchOutlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	outline, err := s.outlineSvc.Patch(c.Request.Context(), userID, outlineID, domain.PatchRequest{
		Header:      req.Header,
		SectionType: req.SectionType,
		Status:      req.Status,
		Target:      req.Target,
		Limit:       req.Limit,
		Reviewer:    req.Reviewer,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"outline": outline})
}

func (s *Server) DeleteOutline(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	outlineID, err := parseID(c.Param("id"), "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.outlineSvc.Delete(c.Request.Context(), userID, outlineID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
