package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/teamspace/internal/auth/domain"
	"github.com/smallbiznis/teamspace/internal/clock"
	"github.com/smallbiznis/teamspace/internal/verification/domain"
	dbpkg "github.com/smallbiznis/teamspace/pkg/db"
	"go.uber.org/zap"
)

const (
	tokenBytes = 32
	tokenTTL   = 7 * time.Hour
)

type service struct {
	log     *zap.Logger
	repo    domain.Repository
	authsvc authdomain.Service
	clock   clock.Clock
	genID   *snowflake.Node
}

func NewService(log *zap.Logger, repo domain.Repository, authsvc authdomain.Service, clk clock.Clock, genID *snowflake.Node) domain.Service {
	return &service{
		log:     log.Named("verification.service"),
		repo:    repo,
		authsvc: authsvc,
		clock:   clk,
		genID:   genID,
	}
}

func (s *service) Issue(ctx context.Context, kind string, userID snowflake.ID) (*domain.IssuedToken, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	v := domain.Verification{
		ID:        s.genID.Generate(),
		Kind:      kind,
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(tokenTTL),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		// A (kind, token) collision evicts the older row. Other outstanding
		// tokens for the user stay valid.
		if !dbpkg.IsDuplicateKeyErr(err) {
			return nil, err
		}
		if err := s.repo.DeleteByKindAndToken(ctx, kind, token); err != nil {
			return nil, err
		}
		if err := s.repo.Create(ctx, v); err != nil {
			return nil, err
		}
	}

	return &domain.IssuedToken{Token: token, ExpiresAt: v.ExpiresAt}, nil
}

func (s *service) RedeemEmailVerification(ctx context.Context, token string) (snowflake.ID, error) {
	v, err := s.spend(ctx, domain.KindEmailVerification, token)
	if err != nil {
		return 0, err
	}
	if err := s.authsvc.MarkEmailVerified(ctx, v.UserID); err != nil {
		return 0, err
	}
	if err := s.repo.Delete(ctx, v.ID); err != nil {
		return 0, err
	}
	return v.UserID, nil
}

func (s *service) RedeemPasswordReset(ctx context.Context, token, newPassword string) (snowflake.ID, error) {
	v, err := s.spend(ctx, domain.KindPasswordReset, token)
	if err != nil {
		return 0, err
	}
	if err := s.authsvc.ChangePassword(ctx, v.UserID, newPassword); err != nil {
		return 0, err
	}
	if err := s.repo.Delete(ctx, v.ID); err != nil {
		return 0, err
	}
	return v.UserID, nil
}

// spend looks the row up and enforces expiry. An expired row is removed on
// first touch so a later retry reports invalid rather than expired.
func (s *service) spend(ctx context.Context, kind, token string) (*domain.Verification, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}

	v, err := s.repo.FindByKindAndToken(ctx, kind, token)
	if err != nil {
		return nil, err
	}

	if s.clock.Now().After(v.ExpiresAt) {
		if err := s.repo.Delete(ctx, v.ID); err != nil {
			s.log.Warn("expired token cleanup failed", zap.Error(err))
		}
		return nil, domain.ErrTokenExpired
	}

	return v, nil
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
