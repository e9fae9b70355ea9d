package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrNotFound      = errors.New("invitation_not_found")
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrInvalidRole   = errors.New("invalid_role")
	ErrPendingExists = errors.New("invitation_exists")
	ErrExpired       = errors.New("invitation_expired")
	ErrNotPending    = errors.New("invitation_not_pending")
	ErrForbidden     = errors.New("forbidden")
)

type InviteRequest struct {
	OrgID snowflake.ID
	Email string
	Role  string
}

type InvitationResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`
	ExpiresAt      time.Time `json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
}

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock
type Service interface {
	Invite(ctx context.Context, inviterID snowflake.ID, req InviteRequest) (*InvitationResponse, error)
	ListByOrg(ctx context.Context, actingUserID, orgID snowflake.ID) ([]InvitationResponse, error)
	Accept(ctx context.Context, actingUserID, invitationID snowflake.ID) error
	Reject(ctx context.Context, actingUserID, invitationID snowflake.ID) error
}
