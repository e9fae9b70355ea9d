package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/teamspace/internal/auth/domain"
	authrepository "github.com/smallbiznis/teamspace/internal/auth/repository"
	authservice "github.com/smallbiznis/teamspace/internal/auth/service"
	"github.com/smallbiznis/teamspace/internal/clock"
	"github.com/smallbiznis/teamspace/internal/verification/domain"
	"github.com/smallbiznis/teamspace/internal/verification/repository"
	"github.com/smallbiznis/teamspace/pkg/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, authdomain.Service, *clock.FakeClock) {
	t.Helper()

	gdb, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(&authdomain.User{}, &authdomain.Session{}, &domain.Verification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	log := zap.NewNop()
	userRepo, sessionRepo := authrepository.New(gdb)
	authsvc := authservice.New(log, userRepo, sessionRepo, node)
	clk := clock.NewFakeClock(time.Now().UTC())
	svc := NewService(log, repository.NewRepository(gdb), authsvc, clk, node)
	return svc, authsvc, clk
}

func createUser(t *testing.T, authsvc authdomain.Service) *authdomain.User {
	t.Helper()
	user, err := authsvc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "user@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestRedeemEmailVerification(t *testing.T) {
	svc, authsvc, _ := newTestService(t)
	ctx := context.Background()
	user := createUser(t, authsvc)

	issued, err := svc.Issue(ctx, domain.KindEmailVerification, user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	userID, err := svc.RedeemEmailVerification(ctx, issued.Token)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("redeemed user = %v, want %v", userID, user.ID)
	}

	got, err := authsvc.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if !got.EmailVerified {
		t.Fatal("expected email_verified after redeem")
	}

	if _, err := svc.RedeemEmailVerification(ctx, issued.Token); err != domain.ErrInvalidToken {
		t.Fatalf("second redeem err = %v, want ErrInvalidToken", err)
	}
}

func TestRedeemExpiredToken(t *testing.T) {
	svc, authsvc, clk := newTestService(t)
	ctx := context.Background()
	user := createUser(t, authsvc)

	issued, err := svc.Issue(ctx, domain.KindEmailVerification, user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clk.Advance(8 * time.Hour)

	if _, err := svc.RedeemEmailVerification(ctx, issued.Token); err != domain.ErrTokenExpired {
		t.Fatalf("expired redeem err = %v, want ErrTokenExpired", err)
	}
	// The expired row is gone, so the next touch is plain invalid.
	if _, err := svc.RedeemEmailVerification(ctx, issued.Token); err != domain.ErrInvalidToken {
		t.Fatalf("retry err = %v, want ErrInvalidToken", err)
	}
}

func TestOutstandingTokensStayIndependent(t *testing.T) {
	svc, authsvc, _ := newTestService(t)
	ctx := context.Background()
	user := createUser(t, authsvc)

	first, err := svc.Issue(ctx, domain.KindPasswordReset, user.ID)
	if err != nil {
		t.Fatalf("first issue: %v", err)
	}
	second, err := svc.Issue(ctx, domain.KindPasswordReset, user.ID)
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}

	// Issuing again does not revoke the earlier token; each is single-use.
	if _, err := svc.RedeemPasswordReset(ctx, first.Token, "another password"); err != nil {
		t.Fatalf("redeem first: %v", err)
	}
	if _, err := svc.RedeemPasswordReset(ctx, second.Token, "a third password"); err != nil {
		t.Fatalf("redeem second: %v", err)
	}

	if _, err := authsvc.Login(ctx, authdomain.LoginRequest{
		Email:    "user@example.com",
		Password: "a third password",
	}); err != nil {
		t.Fatalf("login with newest password: %v", err)
	}
}
