package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock
type Repository interface {
	Create(ctx context.Context, inv Invitation) error
	GetByID(ctx context.Context, id snowflake.ID) (*Invitation, error)
	FindLatestByOrgAndEmail(ctx context.Context, orgID snowflake.ID, email string) (*Invitation, error)
	ListByOrg(ctx context.Context, orgID snowflake.ID) ([]Invitation, error)
	// TransitionStatus flips status only when the row still holds from,
	// reporting whether this caller won the transition.
	TransitionStatus(ctx context.Context, id snowflake.ID, from, to string) (bool, error)
}
