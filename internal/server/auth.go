package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/teamspace/internal/auth/domain"
	"github.com/smallbiznis/teamspace/internal/providers/email"
	signupdomain "github.com/smallbiznis/teamspace/internal/signup/domain"
	verificationdomain "github.com/smallbiznis/teamspace/internal/verification/domain"
	"go.uber.org/zap"
)

type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

func (s *Server) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.signupsvc.Signup(c.Request.Context(), signupdomain.Request{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		UserAgent:   c.Request.UserAgent(),
		IPAddress:   c.ClientIP(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if result.RawToken != "" {
		s.sessions.Set(c, result.RawToken, result.ExpiresAt)
	}

	c.JSON(http.StatusOK, gin.H{"user_id": result.UserID, "session": result.Session})
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if !s.allowAuthAttempt(c, "login") {
		return
	}

	result, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.RawToken, result.ExpiresAt)

	c.JSON(http.StatusOK, gin.H{"session": result.Session})
}

func (s *Server) Logout(c *gin.Context) {
	if sid, ok := s.sessions.ReadToken(c); ok {
		_ = s.authsvc.Logout(c.Request.Context(), sid)
	}
	s.sessions.Clear(c)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Me(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	user, err := s.authsvc.FindByID(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": gin.H{
		"id":             user.ID.String(),
		"email":          user.Email,
		"display_name":   user.DisplayName,
		"email_verified": user.EmailVerified,
	}})
}

// ForgotPassword answers the same body whether or not the account exists.
func (s *Server) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if !s.allowAuthAttempt(c, "forgot_password") {
		return
	}

	ctx := c.Request.Context()
	user, err := s.authsvc.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err == nil {
		issued, issueErr := s.verificationSvc.Issue(ctx, verificationdomain.KindPasswordReset, user.ID)
		if issueErr != nil {
			s.log.Warn("issuing password reset token failed", zap.Error(issueErr))
		} else {
			s.mailer.Go(email.TemplateResetPassword, []string{user.Email},
				"Reset your Teamspace password",
				map[string]any{
					"display_name": user.DisplayName,
					"action_url":   s.cfg.LinkURL("/reset-password", url.Values{"token": []string{issued.Token}}),
				})
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "If the account exists, a reset email has been sent."})
}

func (s *Server) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Password) == "" {
		AbortWithError(c, newValidationError("password", "invalid_password", "invalid password"))
		return
	}

	if _, err := s.verificationSvc.RedeemPasswordReset(c.Request.Context(), req.Token, req.Password); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	s.redeemEmailVerification(c, req.Token)
}

// VerifyEmailLink handles the link embedded in the verification email.
func (s *Server) VerifyEmailLink(c *gin.Context) {
	s.redeemEmailVerification(c, c.Query("token"))
}

func (s *Server) redeemEmailVerification(c *gin.Context, token string) {
	if _, err := s.verificationSvc.RedeemEmailVerification(c.Request.Context(), token); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SendVerification re-issues the email verification token. The response is
// generic regardless of the account's state.
func (s *Server) SendVerification(c *gin.Context) {
	userID, ok := s.userIDFromSession(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if !s.allowAuthAttempt(c, "send_verification") {
		return
	}

	ctx := c.Request.Context()
	user, err := s.authsvc.FindByID(ctx, userID)
	if err == nil && !user.EmailVerified {
		issued, issueErr := s.verificationSvc.Issue(ctx, verificationdomain.KindEmailVerification, user.ID)
		if issueErr != nil {
			s.log.Warn("issuing verification token failed", zap.Error(issueErr))
		} else {
			s.mailer.Go(email.TemplateVerifyEmail, []string{user.Email},
				"Verify your Teamspace email",
				map[string]any{
					"display_name": user.DisplayName,
					"action_url":   s.cfg.LinkURL("/api/auth/verify-email", url.Values{"token": []string{issued.Token}}),
				})
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Verification email sent."})
}

func (s *Server) allowAuthAttempt(c *gin.Context, scope string) bool {
	res, err := s.authLimiter.Allow(c.Request.Context(), scope, c.ClientIP())
	if err != nil {
		s.log.Warn("auth rate limit check failed", zap.String("scope", scope), zap.Error(err))
	}
	if res.Allowed {
		return true
	}

	c.Header("Retry-After", "5")
	AbortWithError(c, ErrRateLimited)
	return false
}
