package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	authdomain "github.com/smallbiznis/teamspace/internal/auth/domain"
	"github.com/smallbiznis/teamspace/internal/clock"
	"github.com/smallbiznis/teamspace/internal/config"
	"github.com/smallbiznis/teamspace/internal/joinrequest/domain"
	notificationdomain "github.com/smallbiznis/teamspace/internal/notification/domain"
	orgdomain "github.com/smallbiznis/teamspace/internal/organization/domain"
	"github.com/smallbiznis/teamspace/internal/providers/email"
	dbpkg "github.com/smallbiznis/teamspace/pkg/db"
	"go.uber.org/zap"
)

const requestTTL = 7 * 24 * time.Hour

type service struct {
	log     *zap.Logger
	cfg     config.Config
	orgRepo orgdomain.Repository
	authsvc authdomain.Service
	notify  notificationdomain.Service
	mailer  *email.Dispatcher
	clock   clock.Clock
	genID   *snowflake.Node
}

func NewService(
	log *zap.Logger,
	cfg config.Config,
	orgRepo orgdomain.Repository,
	authsvc authdomain.Service,
	notify notificationdomain.Service,
	mailer *email.Dispatcher,
	clk clock.Clock,
	genID *snowflake.Node,
) domain.Service {
	return &service{
		log:     log.Named("joinrequest.service"),
		cfg:     cfg,
		orgRepo: orgRepo,
		authsvc: authsvc,
		notify:  notify,
		mailer:  mailer,
		clock:   clk,
		genID:   genID,
	}
}

func (s *service) RequestJoin(ctx context.Context, userID snowflake.ID, rawSlug string) error {
	normalized := slug.Make(strings.TrimSpace(rawSlug))
	if normalized == "" {
		return orgdomain.ErrNotFound
	}

	org, err := s.orgRepo.GetBySlug(ctx, normalized)
	if err != nil {
		return err
	}

	isMember, err := s.orgRepo.IsMember(ctx, org.ID, userID)
	if err != nil {
		return err
	}
	if isMember {
		return orgdomain.ErrAlreadyMember
	}

	requester, err := s.authsvc.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	expiresAt := s.clock.Now().UTC().Add(requestTTL)
	n, err := s.notify.Notify(ctx, notificationdomain.CreateRequest{
		UserID:  org.OwnerID,
		Type:    notificationdomain.TypeJoinRequest,
		Title:   "Join request",
		Message: fmt.Sprintf("%s wants to join %s.", requester.Email, org.Name),
		Metadata: map[string]any{
			"organization_id": org.ID.String(),
			"requester_id":    requester.ID.String(),
			"requester_email": requester.Email,
			"expires_at":      expiresAt.Format(time.RFC3339),
		},
	})
	if err != nil {
		return err
	}

	s.emailOwner(ctx, org, requester, n.ID, expiresAt)
	return nil
}

func (s *service) emailOwner(ctx context.Context, org *orgdomain.Organization, requester *authdomain.User, notificationID snowflake.ID, expiresAt time.Time) {
	owner, err := s.authsvc.FindByID(ctx, org.OwnerID)
	if err != nil {
		s.log.Warn("owner lookup failed", zap.Error(err))
		return
	}

	s.mailer.Go(email.TemplateJoinRequest, []string{owner.Email},
		fmt.Sprintf("%s wants to join %s", requester.Email, org.Name),
		map[string]any{
			"owner_name":      owner.DisplayName,
			"requester_email": requester.Email,
			"org_name":        org.Name,
			"accept_url":      s.actionLink(notificationID, domain.ActionAccept),
			"reject_url":      s.actionLink(notificationID, domain.ActionReject),
			"expires_at":      expiresAt.Format("Jan 2, 2006"),
		})
}

func (s *service) actionLink(notificationID snowflake.ID, action string) string {
	return s.cfg.LinkURL("/api/org/join-request/action", url.Values{
		"notification_id": []string{notificationID.String()},
		"action":          []string{action},
	})
}

func (s *service) Resolve(ctx context.Context, actingUserID, notificationID snowflake.ID, action string) (*domain.ResolveResult, error) {
	n, err := s.notify.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != actingUserID {
		return nil, domain.ErrForbidden
	}
	return s.resolve(ctx, n, action)
}

func (s *service) ResolveByLink(ctx context.Context, notificationID snowflake.ID, action string) (*domain.ResolveResult, error) {
	n, err := s.notify.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, n, action)
}

func (s *service) resolve(ctx context.Context, n *notificationdomain.Notification, action string) (*domain.ResolveResult, error) {
	if action != domain.ActionAccept && action != domain.ActionReject {
		return nil, domain.ErrInvalidAction
	}
	if n.Type != notificationdomain.TypeJoinRequest {
		return nil, domain.ErrNotJoinRequest
	}
	if n.Read {
		return nil, domain.ErrAlreadyResolved
	}

	if expired, err := s.expireIfStale(ctx, n); err != nil {
		return nil, err
	} else if expired {
		return nil, domain.ErrRequestExpired
	}

	requesterID, err := metadataID(n, "requester_id")
	if err != nil {
		return nil, err
	}
	orgID, err := metadataID(n, "organization_id")
	if err != nil {
		return nil, err
	}

	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	requester, err := s.authsvc.FindByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	switch action {
	case domain.ActionAccept:
		err = s.accept(ctx, org, requester)
	case domain.ActionReject:
		err = s.reject(ctx, org, requester)
	}
	if err != nil {
		return nil, err
	}

	if err := s.notify.MarkRead(ctx, n.UserID, []snowflake.ID{n.ID}); err != nil {
		return nil, err
	}

	return &domain.ResolveResult{
		OrganizationID:   org.ID.String(),
		OrganizationName: org.Name,
		Action:           action,
	}, nil
}

// expireIfStale applies lazy expiry: the first touch of a stale request marks
// it read and reports expiry.
func (s *service) expireIfStale(ctx context.Context, n *notificationdomain.Notification) (bool, error) {
	raw, _ := n.Metadata["expires_at"].(string)
	if raw == "" {
		return false, nil
	}
	expiresAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return false, nil
	}
	if !s.clock.Now().After(expiresAt) {
		return false, nil
	}
	if err := s.notify.MarkRead(ctx, n.UserID, []snowflake.ID{n.ID}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) accept(ctx context.Context, org *orgdomain.Organization, requester *authdomain.User) error {
	member := orgdomain.OrganizationMember{
		ID:        s.genID.Generate(),
		OrgID:     org.ID,
		UserID:    requester.ID,
		Role:      orgdomain.RoleMember,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.orgRepo.AddMember(ctx, member); err != nil {
		// Already a member: resolution still completes as a no-op join.
		if !dbpkg.IsDuplicateKeyErr(err) {
			return err
		}
	}

	if _, err := s.notify.Notify(ctx, notificationdomain.CreateRequest{
		UserID:  requester.ID,
		Type:    notificationdomain.TypeJoinAccepted,
		Title:   "Request accepted",
		Message: fmt.Sprintf("Your request to join %s was accepted.", org.Name),
		Metadata: map[string]any{
			"organization_id": org.ID.String(),
		},
	}); err != nil {
		s.log.Warn("join_accepted notification failed", zap.Error(err))
	}

	s.mailer.Go(email.TemplateJoinAccepted, []string{requester.Email},
		fmt.Sprintf("You joined %s", org.Name),
		map[string]any{
			"display_name": requester.DisplayName,
			"org_name":     org.Name,
		})
	return nil
}

func (s *service) reject(ctx context.Context, org *orgdomain.Organization, requester *authdomain.User) error {
	if _, err := s.notify.Notify(ctx, notificationdomain.CreateRequest{
		UserID:  requester.ID,
		Type:    notificationdomain.TypeJoinRejected,
		Title:   "Request declined",
		Message: fmt.Sprintf("Your request to join %s was declined.", org.Name),
		Metadata: map[string]any{
			"organization_id": org.ID.String(),
		},
	}); err != nil {
		s.log.Warn("join_rejected notification failed", zap.Error(err))
	}

	s.mailer.Go(email.TemplateJoinRejected, []string{requester.Email},
		fmt.Sprintf("Your request to join %s was declined", org.Name),
		map[string]any{
			"display_name": requester.DisplayName,
			"org_name":     org.Name,
		})
	return nil
}

func metadataID(n *notificationdomain.Notification, key string) (snowflake.ID, error) {
	raw, _ := n.Metadata[key].(string)
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, fmt.Errorf("notification %d metadata %s: %w", n.ID, key, err)
	}
	return id, nil
}
