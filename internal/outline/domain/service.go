package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound        = errors.New("outline_not_found")
	ErrInvalidHeader   = errors.New("invalid_header")
	ErrInvalidSection  = errors.New("invalid_section_type")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidReviewer = errors.New("invalid_reviewer")
)

type CreateRequest struct {
	OrgID       snowflake.ID
	Header      string
	SectionType string
	Status      string
	Target      int
	Limit       int
	Reviewer    string
}

// PatchRequest carries partial updates; nil fields are untouched.
type PatchRequest struct {
	Header      *string
	SectionType *string
	Status      *string
	Target      *int
	Limit       *int
	Reviewer    *string
}

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock
type Service interface {
	Create(ctx context.Context, actingUserID snowflake.ID, req CreateRequest) (*Outline, error)
	ListByOrg(ctx context.Context, actingUserID, orgID snowflake.ID) ([]Outline, error)
	Patch(ctx context.Context, actingUserID, outlineID snowflake.ID, req PatchRequest) (*Outline, error)
	Delete(ctx context.Context, actingUserID, outlineID snowflake.ID) error
}
