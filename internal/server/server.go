package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/teamspace/internal/auth"
	authdomain "github.com/smallbiznis/teamspace/internal/auth/domain"
	"github.com/smallbiznis/teamspace/internal/auth/session"
	"github.com/smallbiznis/teamspace/internal/authorization"
	"github.com/smallbiznis/teamspace/internal/config"
	"github.com/smallbiznis/teamspace/internal/invitation"
	invitationdomain "github.com/smallbiznis/teamspace/internal/invitation/domain"
	"github.com/smallbiznis/teamspace/internal/joinrequest"
	joinrequestdomain "github.com/smallbiznis/teamspace/internal/joinrequest/domain"
	"github.com/smallbiznis/teamspace/internal/notification"
	notificationdomain "github.com/smallbiznis/teamspace/internal/notification/domain"
	"github.com/smallbiznis/teamspace/internal/observability/metrics"
	"github.com/smallbiznis/teamspace/internal/organization"
	organizationdomain "github.com/smallbiznis/teamspace/internal/organization/domain"
	"github.com/smallbiznis/teamspace/internal/outline"
	outlinedomain "github.com/smallbiznis/teamspace/internal/outline/domain"
	"github.com/smallbiznis/teamspace/internal/providers"
	"github.com/smallbiznis/teamspace/internal/providers/email"
	"github.com/smallbiznis/teamspace/internal/ratelimit"
	"github.com/smallbiznis/teamspace/internal/signup"
	signupdomain "github.com/smallbiznis/teamspace/internal/signup/domain"
	"github.com/smallbiznis/teamspace/internal/verification"
	verificationdomain "github.com/smallbiznis/teamspace/internal/verification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	auth.Module,
	session.Module,
	providers.Module,
	notification.Module,
	verification.Module,
	signup.Module,
	organization.Module,
	invitation.Module,
	joinrequest.Module,
	outline.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(MetricsMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(m *metrics.Metrics) *gin.Engine {
	return NewEngine(m)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	authsvc         authdomain.Service
	sessions        *session.Manager
	signupsvc       signupdomain.Service
	organizationSvc organizationdomain.Service
	invitationSvc   invitationdomain.Service
	joinRequestSvc  joinrequestdomain.Service
	notificationSvc notificationdomain.Service
	verificationSvc verificationdomain.Service
	outlineSvc      outlinedomain.Service
	authzSvc        authorization.Service
	authLimiter     *ratelimit.AuthLimiter
	mailer          *email.Dispatcher
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	Authsvc         authdomain.Service
	Sessions        *session.Manager
	Signupsvc       signupdomain.Service
	OrganizationSvc organizationdomain.Service
	InvitationSvc   invitationdomain.Service
	JoinRequestSvc  joinrequestdomain.Service
	NotificationSvc notificationdomain.Service
	VerificationSvc verificationdomain.Service
	OutlineSvc      outlinedomain.Service
	AuthzSvc        authorization.Service
	AuthLimiter     *ratelimit.AuthLimiter `optional:"true"`
	Mailer          *email.Dispatcher
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("http.server"),
		authsvc:         p.Authsvc,
		sessions:        p.Sessions,
		signupsvc:       p.Signupsvc,
		organizationSvc: p.OrganizationSvc,
		invitationSvc:   p.InvitationSvc,
		joinRequestSvc:  p.JoinRequestSvc,
		notificationSvc: p.NotificationSvc,
		verificationSvc: p.VerificationSvc,
		outlineSvc:      p.OutlineSvc,
		authzSvc:        p.AuthzSvc,
		authLimiter:     p.AuthLimiter,
		mailer:          p.Mailer,
	}

	svc.registerAuthRoutes()
	svc.registerOrgRoutes()
	svc.registerNotificationRoutes()
	svc.registerOutlineRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/api/auth")

	auth.POST("/signup", s.Signup)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
	auth.POST("/forgot-password", s.ForgotPassword)
	auth.POST("/reset-password", s.ResetPassword)
	auth.POST("/verify-email", s.VerifyEmail)
	auth.GET("/verify-email", s.VerifyEmailLink)
	auth.POST("/send-verification", s.AuthRequired(), s.SendVerification)
}

func (s *Server) registerOrgRoutes() {
	// Email links carry an opaque notification id instead of a session.
	s.engine.GET("/api/org/join-request/action", s.JoinRequestAction)

	org := s.engine.Group("/api/org", s.AuthRequired())

	org.POST("/create", s.CreateOrg)
	org.GET("", s.MeOrgs)
	org.GET("/by-slug/:slug", s.GetOrgBySlug)
	org.DELETE("/delete", s.DeleteOrg)

	org.GET("/members", s.ListMembers)
	org.POST("/members", s.InviteMember)
	org.DELETE("/members", s.RemoveMember)

	org.GET("/invitations", s.ListInvitations)
	org.POST("/invitations/accept", s.AcceptInvitation)
	org.POST("/invitations/reject", s.RejectInvitation)

	org.POST("/join", s.JoinOrg)
	org.POST("/join-request/resolve", s.ResolveJoinRequest)
}

func (s *Server) registerNotificationRoutes() {
	n := s.engine.Group("/api/notifications", s.AuthRequired())

	n.GET("", s.ListNotifications)
	n.PATCH("", s.MarkNotificationsRead)
}

func (s *Server) registerOutlineRoutes() {
	o := s.engine.Group("/api/outlines", s.AuthRequired())

	o.GET("", s.ListOutlines)
	o.POST("", s.CreateOutline)
	o.PATCH("/:id", s.PatchOutline)
	o.DELETE("/:id", s.DeleteOutline)
}
