package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidToken = errors.New("invalid_token")
	ErrTokenExpired = errors.New("token_expired")
)

type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock
type Service interface {
	// Issue mints a fresh token of the given kind. Outstanding tokens for
	// the same user stay valid; only a raw token collision is evicted.
	Issue(ctx context.Context, kind string, userID snowflake.ID) (*IssuedToken, error)
	RedeemEmailVerification(ctx context.Context, token string) (snowflake.ID, error)
	RedeemPasswordReset(ctx context.Context, token, newPassword string) (snowflake.ID, error)
}
