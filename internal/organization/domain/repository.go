package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type OrganizationListItem struct {
	ID        snowflake.ID
	Name      string
	Slug      string
	Role      string
	CreatedAt time.Time
}

type MemberListItem struct {
	UserID      snowflake.ID
	Email       string
	DisplayName string
	Role        string
	CreatedAt   time.Time
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrganization(ctx context.Context, org Organization) error
	GetByID(ctx context.Context, id snowflake.ID) (*Organization, error)
	GetBySlug(ctx context.Context, slug string) (*Organization, error)
	FindByOwnerAndName(ctx context.Context, ownerID snowflake.ID, name string) (*Organization, error)
	DeleteOrganization(ctx context.Context, id snowflake.ID) error
	AddMember(ctx context.Context, member OrganizationMember) error
	GetMember(ctx context.Context, orgID, userID snowflake.ID) (*OrganizationMember, error)
	IsMember(ctx context.Context, orgID, userID snowflake.ID) (bool, error)
	IsMemberEmail(ctx context.Context, orgID snowflake.ID, email string) (bool, error)
	ListMembers(ctx context.Context, orgID snowflake.ID) ([]MemberListItem, error)
	ListMemberUserIDs(ctx context.Context, orgID snowflake.ID) ([]snowflake.ID, error)
	RemoveMember(ctx context.Context, orgID, userID snowflake.ID) error
	ListOrganizationsByUser(ctx context.Context, userID snowflake.ID) ([]OrganizationListItem, error)
}
