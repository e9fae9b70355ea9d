package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	authdomain "github.com/smallbiznis/teamspace/internal/auth/domain"
	notificationdomain "github.com/smallbiznis/teamspace/internal/notification/domain"
	"github.com/smallbiznis/teamspace/internal/organization/domain"
	dbpkg "github.com/smallbiznis/teamspace/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// slugAttempts bounds the generate-and-retry loop; the unique constraint is
// the real arbiter, retries only pick a fresh suffix.
const slugAttempts = 20

type service struct {
	log     *zap.Logger
	db      *gorm.DB
	repo    domain.Repository
	authsvc authdomain.Service
	notify  notificationdomain.Service
	genID   *snowflake.Node
}

func NewService(log *zap.Logger, db *gorm.DB, repo domain.Repository, authsvc authdomain.Service, notify notificationdomain.Service, genID *snowflake.Node) domain.Service {
	return &service{
		log:     log.Named("organization.service"),
		db:      db,
		repo:    repo,
		authsvc: authsvc,
		notify:  notify,
		genID:   genID,
	}
}

func (s *service) Create(ctx context.Context, userID snowflake.ID, req domain.CreateOrganizationRequest) (*domain.OrganizationResponse, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	if _, err := s.repo.FindByOwnerAndName(ctx, userID, name); err == nil {
		return nil, domain.ErrDuplicateName
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	base := slug.Make(name)
	if base == "" {
		return nil, domain.ErrInvalidName
	}

	var created *domain.Organization
	for attempt := 0; attempt < slugAttempts; attempt++ {
		candidate := base
		if attempt > 0 {
			suffix, err := randomSuffix()
			if err != nil {
				return nil, err
			}
			candidate = fmt.Sprintf("%s-%s", base, suffix)
		}

		org, err := s.createWithSlug(ctx, userID, name, candidate)
		if err == nil {
			created = org
			break
		}
		if !dbpkg.IsDuplicateKeyErr(err) {
			return nil, err
		}
	}
	if created == nil {
		return nil, domain.ErrSlugExhausted
	}

	return &domain.OrganizationResponse{
		ID:      created.ID.String(),
		Name:    created.Name,
		Slug:    created.Slug,
		OwnerID: created.OwnerID.String(),
	}, nil
}

// createWithSlug inserts the organization and its owner member row in one
// transaction so the pair cannot be observed half-created.
func (s *service) createWithSlug(ctx context.Context, userID snowflake.ID, name, candidate string) (*domain.Organization, error) {
	now := time.Now().UTC()
	org := domain.Organization{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      candidate,
		OwnerID:   userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrganization(ctx, org); err != nil {
			return err
		}

		member := domain.OrganizationMember{
			ID:        s.genID.Generate(),
			OrgID:     org.ID,
			UserID:    userID,
			Role:      domain.RoleOwner,
			CreatedAt: now,
		}
		return repo.AddMember(ctx, member)
	})
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (s *service) GetBySlug(ctx context.Context, raw string) (*domain.OrganizationResponse, error) {
	normalized := slug.Make(strings.TrimSpace(raw))
	if normalized == "" {
		return nil, domain.ErrNotFound
	}

	org, err := s.repo.GetBySlug(ctx, normalized)
	if err != nil {
		return nil, err
	}

	return &domain.OrganizationResponse{
		ID:      org.ID.String(),
		Name:    org.Name,
		Slug:    org.Slug,
		OwnerID: org.OwnerID.String(),
	}, nil
}

func (s *service) ListOrganizationsByUser(ctx context.Context, userID snowflake.ID) ([]domain.OrganizationListResponseItem, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	items, err := s.repo.ListOrganizationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.OrganizationListResponseItem, 0, len(items))
	for _, item := range items {
		resp = append(resp, domain.OrganizationListResponseItem{
			ID:        item.ID.String(),
			Name:      item.Name,
			Slug:      item.Slug,
			Role:      item.Role,
			CreatedAt: item.CreatedAt,
		})
	}

	return resp, nil
}

func (s *service) ListMembers(ctx context.Context, actingUserID, orgID snowflake.ID) ([]domain.MemberListItem, error) {
	ok, err := s.repo.IsMember(ctx, orgID, actingUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}
	return s.repo.ListMembers(ctx, orgID)
}

func (s *service) RemoveMember(ctx context.Context, actingUserID, orgID, memberUserID snowflake.ID) error {
	org, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		return err
	}
	if org.OwnerID != actingUserID {
		return domain.ErrForbidden
	}
	if memberUserID == org.OwnerID {
		return domain.ErrCannotRemoveOwner
	}

	if err := s.repo.RemoveMember(ctx, orgID, memberUserID); err != nil {
		return err
	}

	if _, err := s.notify.Notify(ctx, notificationdomain.CreateRequest{
		UserID:  memberUserID,
		Type:    notificationdomain.TypeMemberRemoved,
		Title:   "Removed from organization",
		Message: fmt.Sprintf("You were removed from %s.", org.Name),
		Metadata: map[string]any{
			"organization_id": org.ID.String(),
		},
	}); err != nil {
		s.log.Warn("member_removed notification failed", zap.Error(err))
	}

	return nil
}

func (s *service) Delete(ctx context.Context, actingUserID, orgID snowflake.ID, password string) error {
	org, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		return err
	}
	if org.OwnerID != actingUserID {
		return domain.ErrForbidden
	}

	if err := s.authsvc.VerifyPassword(ctx, actingUserID, password); err != nil {
		return err
	}

	memberIDs, err := s.repo.ListMemberUserIDs(ctx, orgID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM invitations WHERE org_id = ?`, orgID).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM outlines WHERE org_id = ?`, orgID).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM organization_members WHERE org_id = ?`, orgID).Error; err != nil {
			return err
		}
		return s.repo.WithTx(tx).DeleteOrganization(ctx, orgID)
	})
	if err != nil {
		return err
	}

	for _, memberID := range memberIDs {
		if memberID == actingUserID {
			continue
		}
		if _, err := s.notify.Notify(ctx, notificationdomain.CreateRequest{
			UserID:  memberID,
			Type:    notificationdomain.TypeOrganizationDeleted,
			Title:   "Organization deleted",
			Message: fmt.Sprintf("%s has been deleted by its owner.", org.Name),
			Metadata: map[string]any{
				"organization_id": org.ID.String(),
			},
		}); err != nil {
			s.log.Warn("organization_deleted notification failed", zap.Error(err))
		}
	}

	return nil
}

func randomSuffix() (string, error) {
	buf := make([]byte, 2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
