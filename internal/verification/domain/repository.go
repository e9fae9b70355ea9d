package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock
type Repository interface {
	Create(ctx context.Context, v Verification) error
	FindByKindAndToken(ctx context.Context, kind, token string) (*Verification, error)
	Delete(ctx context.Context, id snowflake.ID) error
	DeleteByKindAndToken(ctx context.Context, kind, token string) error
}
