package signup

import (
	"context"
	"net/url"
	"strings"

	authdomain "github.com/smallbiznis/teamspace/internal/auth/domain"
	"github.com/smallbiznis/teamspace/internal/config"
	"github.com/smallbiznis/teamspace/internal/providers/email"
	"github.com/smallbiznis/teamspace/internal/signup/domain"
	verificationdomain "github.com/smallbiznis/teamspace/internal/verification/domain"
	"go.uber.org/zap"
)

type service struct {
	log       *zap.Logger
	cfg       config.Config
	authsvc   authdomain.Service
	verifysvc verificationdomain.Service
	mailer    *email.Dispatcher
}

func NewService(
	log *zap.Logger,
	cfg config.Config,
	authsvc authdomain.Service,
	verifysvc verificationdomain.Service,
	mailer *email.Dispatcher,
) domain.Service {
	return &service{
		log:       log.Named("signup.service"),
		cfg:       cfg,
		authsvc:   authsvc,
		verifysvc: verifysvc,
		mailer:    mailer,
	}
}

func (s *service) Signup(ctx context.Context, req domain.Request) (*domain.Result, error) {
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		return nil, domain.ErrInvalidRequest
	}

	user, err := s.authsvc.CreateUser(ctx, authdomain.CreateUserRequest{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	if s.cfg.Email.Enabled {
		s.sendVerification(ctx, user)
	} else {
		// Without outbound email nobody could ever verify, so grant it here.
		if err := s.authsvc.MarkEmailVerified(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	session, err := s.authsvc.Login(ctx, authdomain.LoginRequest{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: req.UserAgent,
		IPAddress: req.IPAddress,
	})
	if err != nil {
		return nil, err
	}

	return &domain.Result{
		Session:   session.Session,
		RawToken:  session.RawToken,
		ExpiresAt: session.ExpiresAt,
		UserID:    user.ID.String(),
	}, nil
}

func (s *service) sendVerification(ctx context.Context, user *authdomain.User) {
	issued, err := s.verifysvc.Issue(ctx, verificationdomain.KindEmailVerification, user.ID)
	if err != nil {
		s.log.Warn("issuing verification token failed", zap.Error(err))
		return
	}

	s.mailer.Go(email.TemplateVerifyEmail, []string{user.Email},
		"Verify your Teamspace email",
		map[string]any{
			"display_name": user.DisplayName,
			"action_url":   s.cfg.LinkURL("/api/auth/verify-email", url.Values{"token": []string{issued.Token}}),
		})
}
