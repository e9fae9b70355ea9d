package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// ValidRole reports whether a role name is assignable to a member row.
func ValidRole(role string) bool {
	return role == RoleOwner || role == RoleMember
}

type Service interface {
	Create(ctx context.Context, userID snowflake.ID, req CreateOrganizationRequest) (*OrganizationResponse, error)
	GetBySlug(ctx context.Context, slug string) (*OrganizationResponse, error)
	ListOrganizationsByUser(ctx context.Context, userID snowflake.ID) ([]OrganizationListResponseItem, error)
	ListMembers(ctx context.Context, actingUserID, orgID snowflake.ID) ([]MemberListItem, error)
	RemoveMember(ctx context.Context, actingUserID, orgID, memberUserID snowflake.ID) error
	Delete(ctx context.Context, actingUserID, orgID snowflake.ID, password string) error
}

type CreateOrganizationRequest struct {
	Name string
}

type OrganizationResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	OwnerID string `json:"owner_id"`
}

type OrganizationListResponseItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidUser       = errors.New("invalid_user")
	ErrNotFound          = errors.New("organization_not_found")
	ErrForbidden         = errors.New("forbidden")
	ErrDuplicateName     = errors.New("duplicate_org_name")
	ErrSlugExhausted     = errors.New("slug_exhausted")
	ErrAlreadyMember     = errors.New("already_member")
	ErrMemberNotFound    = errors.New("member_not_found")
	ErrCannotRemoveOwner = errors.New("cannot_remove_owner")
)
