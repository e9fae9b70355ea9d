package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/teamspace/internal/config"
)

const keyAuthAttempt = "auth:%s:%s"

// Credential endpoints get a modest budget per client address to blunt
// brute-force and enumeration probes.
const (
	authRate  = 0.2 // one attempt every five seconds, sustained
	authBurst = 5
)

// AuthLimiter throttles credential-sensitive endpoints per remote address.
// A nil limiter (no Redis configured) allows everything.
type AuthLimiter struct {
	bucket *TokenBucket
}

func NewAuthLimiter(cfg config.Config) *AuthLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})
	return &AuthLimiter{bucket: NewTokenBucket(client)}
}

// Allow reports whether a scoped attempt may proceed. Redis outages fail
// open: availability of login beats throttling fidelity.
func (l *AuthLimiter) Allow(ctx context.Context, scope, clientKey string) (*RateLimitResult, error) {
	if l == nil || l.bucket == nil {
		return &RateLimitResult{Allowed: true}, nil
	}

	key := fmt.Sprintf(keyAuthAttempt, scope, clientKey)
	res, err := l.bucket.Allow(ctx, key, authRate, authBurst)
	if err != nil {
		return &RateLimitResult{Allowed: true}, err
	}
	return res, nil
}
