package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/teamspace/internal/auth/domain"
	"github.com/smallbiznis/teamspace/internal/auth/repository"
	"github.com/smallbiznis/teamspace/pkg/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) authdomain.Service {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&authdomain.User{}, &authdomain.Session{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	repo, sessionRepo := repository.New(dbConn)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	return New(zap.NewNop(), repo, sessionRepo, node)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	_, err = svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "Alice@Example.com",
		Password: "another-password",
	})
	if err != authdomain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if user == nil {
		t.Fatal("expected user")
	}

	_, err = svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	if err != authdomain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "bob@example.com",
		Password: "super-secret-pw",
	}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	result, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "bob@example.com",
		Password: "super-secret-pw",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.RawToken == "" {
		t.Fatal("expected a session token")
	}

	session, err := svc.Authenticate(context.Background(), result.RawToken)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if session.ID != result.SessionID {
		t.Fatalf("expected session %v, got %v", result.SessionID, session.ID)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "carol@example.com",
		Password: "super-secret-pw",
	}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	result, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "carol@example.com",
		Password: "super-secret-pw",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), result.RawToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), result.RawToken); err != authdomain.ErrSessionRevoked {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}
}

func TestMarkEmailVerified(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "dave@example.com",
		Password: "super-secret-pw",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if user.EmailVerified {
		t.Fatal("new users must start unverified")
	}

	if err := svc.MarkEmailVerified(context.Background(), user.ID); err != nil {
		t.Fatalf("mark verified failed: %v", err)
	}

	got, err := svc.FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if !got.EmailVerified {
		t.Fatal("expected email_verified to be true")
	}
}
