package ratelimit

import (
	"context"
	"testing"

	"github.com/smallbiznis/teamspace/internal/config"
)

func TestNilLimiterAllowsEverything(t *testing.T) {
	var l *AuthLimiter
	res, err := l.Allow(context.Background(), "login", "203.0.113.9")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !res.Allowed {
		t.Fatal("nil limiter must allow")
	}
}

func TestNewAuthLimiterDisabledWithoutRedis(t *testing.T) {
	if l := NewAuthLimiter(config.Config{}); l != nil {
		t.Fatal("expected nil limiter when redis addr is empty")
	}
}
