package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

var (
	ErrInvalidAction   = errors.New("invalid_action")
	ErrNotJoinRequest  = errors.New("not_join_request")
	ErrAlreadyResolved = errors.New("join_request_resolved")
	ErrRequestExpired  = errors.New("join_request_expired")
	ErrForbidden       = errors.New("forbidden")
)

// ResolveResult reports which organization the resolution touched, for
// redirects on the email-link path.
type ResolveResult struct {
	OrganizationID   string
	OrganizationName string
	Action           string
}

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock
type Service interface {
	// RequestJoin files a membership request against the organization behind
	// the slug. The owner's join_request notification is the authoritative
	// record; there is no dedup of concurrent requests from the same user.
	RequestJoin(ctx context.Context, userID snowflake.ID, rawSlug string) error
	// Resolve handles the authenticated owner action.
	Resolve(ctx context.Context, actingUserID, notificationID snowflake.ID, action string) (*ResolveResult, error)
	// ResolveByLink handles the unauthenticated email-link action. It trusts
	// only the opaque notification id plus action pair.
	ResolveByLink(ctx context.Context, notificationID snowflake.ID, action string) (*ResolveResult, error)
}
