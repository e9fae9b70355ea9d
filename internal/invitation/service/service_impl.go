package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/teamspace/internal/auth/domain"
	"github.com/smallbiznis/teamspace/internal/clock"
	"github.com/smallbiznis/teamspace/internal/config"
	"github.com/smallbiznis/teamspace/internal/invitation/domain"
	notificationdomain "github.com/smallbiznis/teamspace/internal/notification/domain"
	orgdomain "github.com/smallbiznis/teamspace/internal/organization/domain"
	"github.com/smallbiznis/teamspace/internal/providers/email"
	dbpkg "github.com/smallbiznis/teamspace/pkg/db"
	"go.uber.org/zap"
)

const invitationTTL = 7 * 24 * time.Hour

type service struct {
	log     *zap.Logger
	cfg     config.Config
	repo    domain.Repository
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
	repo domain.Repository,
	orgRepo orgdomain.Repository,
	authsvc authdomain.Service,
	notify notificationdomain.Service,
	mailer *email.Dispatcher,
	clk clock.Clock,
	genID *snowflake.Node,
) domain.Service {
	return &service{
		log:     log.Named("invitation.service"),
		cfg:     cfg,
		repo:    repo,
		orgRepo: orgRepo,
		authsvc: authsvc,
		notify:  notify,
		mailer:  mailer,
		clock:   clk,
		genID:   genID,
	}
}

func (s *service) Invite(ctx context.Context, inviterID snowflake.ID, req domain.InviteRequest) (*domain.InvitationResponse, error) {
	org, err := s.orgRepo.GetByID(ctx, req.OrgID)
	if err != nil {
		return nil, err
	}
	if org.OwnerID != inviterID {
		return nil, domain.ErrForbidden
	}

	target := strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(target); err != nil {
		return nil, domain.ErrInvalidEmail
	}

	role := req.Role
	if role == "" {
		role = orgdomain.RoleMember
	}
	if role == orgdomain.RoleOwner || !orgdomain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	isMember, err := s.orgRepo.IsMemberEmail(ctx, org.ID, target)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, orgdomain.ErrAlreadyMember
	}

	now := s.clock.Now().UTC()
	existing, err := s.repo.FindLatestByOrgAndEmail(ctx, org.ID, target)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status == domain.StatusPending {
		if now.Before(existing.ExpiresAt) {
			return nil, domain.ErrPendingExists
		}
		// Stale pending row goes terminal before a fresh invitation is cut.
		if _, err := s.repo.TransitionStatus(ctx, existing.ID, domain.StatusPending, domain.StatusExpired); err != nil {
			return nil, err
		}
	}

	inv := domain.Invitation{
		ID:        s.genID.Generate(),
		OrgID:     org.ID,
		Email:     target,
		Role:      role,
		InviterID: inviterID,
		Status:    domain.StatusPending,
		ExpiresAt: now.Add(invitationTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.notifyInvitee(ctx, org, inv)
	s.emailInvitee(ctx, org, inv)

	return invitationResponse(inv), nil
}

// notifyInvitee refreshes the invitee's unread invitation notification for
// this organization instead of stacking duplicates on re-invite.
func (s *service) notifyInvitee(ctx context.Context, org *orgdomain.Organization, inv domain.Invitation) {
	invitee, err := s.authsvc.FindByEmail(ctx, inv.Email)
	if err != nil {
		if !errors.Is(err, authdomain.ErrUserNotFound) {
			s.log.Warn("invitee lookup failed", zap.Error(err))
		}
		return
	}

	if _, err := s.notify.Upsert(ctx, notificationdomain.CreateRequest{
		UserID:  invitee.ID,
		Type:    notificationdomain.TypeInvitation,
		Title:   "Organization invitation",
		Message: fmt.Sprintf("You have been invited to join %s as a %s.", org.Name, inv.Role),
		Metadata: map[string]any{
			"invitation_id":     inv.ID.String(),
			"organization_id":   org.ID.String(),
			"organization_name": org.Name,
			"role":              inv.Role,
			"expires_at":        inv.ExpiresAt.Format(time.RFC3339),
		},
	}, "organization_id"); err != nil {
		s.log.Warn("invitation notification failed", zap.Error(err))
	}
}

func (s *service) emailInvitee(ctx context.Context, org *orgdomain.Organization, inv domain.Invitation) {
	inviterName := "The owner"
	if inviter, err := s.authsvc.FindByID(ctx, inv.InviterID); err == nil {
		inviterName = inviter.DisplayName
	}

	s.mailer.Go(email.TemplateInviteMember, []string{inv.Email},
		fmt.Sprintf("You're invited to join %s", org.Name),
		map[string]any{
			"inviter_name": inviterName,
			"org_name":     org.Name,
			"role":         inv.Role,
			"action_url":   s.cfg.LinkURL("/notifications", nil),
			"expires_at":   inv.ExpiresAt.Format("Jan 2, 2006"),
		})
}

func (s *service) ListByOrg(ctx context.Context, actingUserID, orgID snowflake.ID) ([]domain.InvitationResponse, error) {
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org.OwnerID != actingUserID {
		return nil, domain.ErrForbidden
	}

	invs, err := s.repo.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	resp := make([]domain.InvitationResponse, 0, len(invs))
	for i := range invs {
		inv := invs[i]
		if inv.Status == domain.StatusPending && now.After(inv.ExpiresAt) {
			if _, err := s.repo.TransitionStatus(ctx, inv.ID, domain.StatusPending, domain.StatusExpired); err != nil {
				return nil, err
			}
			inv.Status = domain.StatusExpired
		}
		resp = append(resp, *invitationResponse(inv))
	}
	return resp, nil
}

func (s *service) Accept(ctx context.Context, actingUserID, invitationID snowflake.ID) error {
	inv, user, err := s.resolvePending(ctx, actingUserID, invitationID)
	if err != nil {
		return err
	}

	org, err := s.orgRepo.GetByID(ctx, inv.OrgID)
	if err != nil {
		return err
	}

	role := inv.Role
	if role == "" {
		role = orgdomain.RoleMember
	}
	member := orgdomain.OrganizationMember{
		ID:        s.genID.Generate(),
		OrgID:     inv.OrgID,
		UserID:    user.ID,
		Role:      role,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.orgRepo.AddMember(ctx, member); err != nil {
		// The unique (org, user) constraint is the backstop for concurrent
		// accepts; losing that race is still a successful accept.
		if !dbpkg.IsDuplicateKeyErr(err) {
			return err
		}
	}

	if _, err := s.repo.TransitionStatus(ctx, inv.ID, domain.StatusPending, domain.StatusAccepted); err != nil {
		return err
	}

	s.markOriginRead(ctx, user.ID, inv)

	if _, err := s.notify.Notify(ctx, notificationdomain.CreateRequest{
		UserID:  user.ID,
		Type:    notificationdomain.TypeInvitationAccepted,
		Title:   "Welcome to " + org.Name,
		Message: fmt.Sprintf("You joined %s as a %s.", org.Name, role),
		Metadata: map[string]any{
			"organization_id": org.ID.String(),
		},
	}); err != nil {
		s.log.Warn("accept notification to member failed", zap.Error(err))
	}
	if _, err := s.notify.Notify(ctx, notificationdomain.CreateRequest{
		UserID:  org.OwnerID,
		Type:    notificationdomain.TypeInvitationAccepted,
		Title:   "Invitation accepted",
		Message: fmt.Sprintf("%s joined %s.", user.Email, org.Name),
		Metadata: map[string]any{
			"organization_id": org.ID.String(),
			"invitation_id":   inv.ID.String(),
		},
	}); err != nil {
		s.log.Warn("accept notification to owner failed", zap.Error(err))
	}

	if owner, err := s.authsvc.FindByID(ctx, org.OwnerID); err == nil {
		s.mailer.Go(email.TemplateInvitationAccepted, []string{owner.Email},
			fmt.Sprintf("%s joined %s", user.Email, org.Name),
			map[string]any{
				"owner_name":   owner.DisplayName,
				"member_email": user.Email,
				"org_name":     org.Name,
			})
	}

	return nil
}

func (s *service) Reject(ctx context.Context, actingUserID, invitationID snowflake.ID) error {
	inv, user, err := s.resolvePending(ctx, actingUserID, invitationID)
	if err != nil {
		return err
	}

	org, err := s.orgRepo.GetByID(ctx, inv.OrgID)
	if err != nil {
		return err
	}

	if _, err := s.repo.TransitionStatus(ctx, inv.ID, domain.StatusPending, domain.StatusRejected); err != nil {
		return err
	}

	s.markOriginRead(ctx, user.ID, inv)

	if _, err := s.notify.Notify(ctx, notificationdomain.CreateRequest{
		UserID:  org.OwnerID,
		Type:    notificationdomain.TypeInvitationRejected,
		Title:   "Invitation declined",
		Message: fmt.Sprintf("%s declined the invitation to %s.", user.Email, org.Name),
		Metadata: map[string]any{
			"organization_id": org.ID.String(),
			"invitation_id":   inv.ID.String(),
		},
	}); err != nil {
		s.log.Warn("reject notification to owner failed", zap.Error(err))
	}

	if owner, err := s.authsvc.FindByID(ctx, org.OwnerID); err == nil {
		s.mailer.Go(email.TemplateInvitationRejected, []string{owner.Email},
			fmt.Sprintf("%s declined the invitation to %s", user.Email, org.Name),
			map[string]any{
				"owner_name":   owner.DisplayName,
				"member_email": user.Email,
				"org_name":     org.Name,
			})
	}

	return nil
}

// resolvePending loads the invitation and enforces the pending+email-match
// preconditions shared by accept and reject, flipping stale rows to expired.
func (s *service) resolvePending(ctx context.Context, actingUserID, invitationID snowflake.ID) (*domain.Invitation, *authdomain.User, error) {
	inv, err := s.repo.GetByID(ctx, invitationID)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.authsvc.FindByID(ctx, actingUserID)
	if err != nil {
		return nil, nil, err
	}
	if user.Email != inv.Email {
		return nil, nil, domain.ErrForbidden
	}

	switch inv.Status {
	case domain.StatusPending:
	case domain.StatusExpired:
		return nil, nil, domain.ErrExpired
	default:
		return nil, nil, domain.ErrNotPending
	}

	if s.clock.Now().After(inv.ExpiresAt) {
		if _, err := s.repo.TransitionStatus(ctx, inv.ID, domain.StatusPending, domain.StatusExpired); err != nil {
			return nil, nil, err
		}
		return nil, nil, domain.ErrExpired
	}

	return inv, user, nil
}

func (s *service) markOriginRead(ctx context.Context, userID snowflake.ID, inv *domain.Invitation) {
	if err := s.notify.MarkReadByRef(ctx, userID, notificationdomain.TypeInvitation, "invitation_id", inv.ID.String()); err != nil {
		s.log.Warn("marking invitation notification read failed", zap.Error(err))
	}
}

func invitationResponse(inv domain.Invitation) *domain.InvitationResponse {
	return &domain.InvitationResponse{
		ID:             inv.ID.String(),
		OrganizationID: inv.OrgID.String(),
		Email:          inv.Email,
		Role:           inv.Role,
		Status:         inv.Status,
		ExpiresAt:      inv.ExpiresAt,
		CreatedAt:      inv.CreatedAt,
	}
}
