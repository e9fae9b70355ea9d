package domain

import (
	"context"
	"errors"
	"time"

	authdomain "github.com/smallbiznis/teamspace/internal/auth/domain"
)

type Service interface {
	Signup(ctx context.Context, req Request) (*Result, error)
}

type Request struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	UserAgent   string `json:"-"`
	IPAddress   string `json:"-"`
}

type Result struct {
	Session   *authdomain.SessionView
	RawToken  string
	ExpiresAt time.Time
	UserID    string
}

var ErrInvalidRequest = errors.New("invalid signup request")
