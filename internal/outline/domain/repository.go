package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock
type Repository interface {
	Create(ctx context.Context, o Outline) error
	GetByID(ctx context.Context, id snowflake.ID) (*Outline, error)
	ListByOrg(ctx context.Context, orgID snowflake.ID) ([]Outline, error)
	Update(ctx context.Context, o *Outline) error
	Delete(ctx context.Context, id snowflake.ID) error
}
