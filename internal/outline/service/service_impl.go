package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	orgdomain "github.com/smallbiznis/teamspace/internal/organization/domain"
	"github.com/smallbiznis/teamspace/internal/outline/domain"
	"go.uber.org/zap"
)

type service struct {
	log     *zap.Logger
	repo    domain.Repository
	orgRepo orgdomain.Repository
	genID   *snowflake.Node
}

func NewService(log *zap.Logger, repo domain.Repository, orgRepo orgdomain.Repository, genID *snowflake.Node) domain.Service {
	return &service{
		log:     log.Named("outline.service"),
		repo:    repo,
		orgRepo: orgRepo,
		genID:   genID,
	}
}

func (s *service) Create(ctx context.Context, actingUserID snowflake.ID, req domain.CreateRequest) (*domain.Outline, error) {
	org, err := s.orgRepo.GetByID(ctx, req.OrgID)
	if err != nil {
		return nil, err
	}
	if org.OwnerID != actingUserID {
		return nil, orgdomain.ErrForbidden
	}

	header := strings.TrimSpace(req.Header)
	if header == "" {
		return nil, domain.ErrInvalidHeader
	}

	sectionType := req.SectionType
	if sectionType == "" {
		sectionType = domain.SectionOverview
	}
	status := req.Status
	if status == "" {
		status = domain.StatusDraft
	}
	reviewer := req.Reviewer
	if reviewer == "" {
		reviewer = domain.ReviewerUnassigned
	}
	if err := validateEnums(sectionType, status, reviewer); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	o := domain.Outline{
		ID:          s.genID.Generate(),
		OrgID:       org.ID,
		Header:      header,
		SectionType: sectionType,
		Status:      status,
		Target:      req.Target,
		Limit:       req.Limit,
		Reviewer:    reviewer,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *service) ListByOrg(ctx context.Context, actingUserID, orgID snowflake.ID) ([]domain.Outline, error) {
	isMember, err := s.orgRepo.IsMember(ctx, orgID, actingUserID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, orgdomain.ErrForbidden
	}
	return s.repo.ListByOrg(ctx, orgID)
}

func (s *service) Patch(ctx context.Context, actingUserID, outlineID snowflake.ID, req domain.PatchRequest) (*domain.Outline, error) {
	o, err := s.requireOwner(ctx, actingUserID, outlineID)
	if err != nil {
		return nil, err
	}

	if req.Header != nil {
		header := strings.TrimSpace(*req.Header)
		if header == "" {
			return nil, domain.ErrInvalidHeader
		}
		o.Header = header
	}
	if req.SectionType != nil {
		o.SectionType = *req.SectionType
	}
	if req.Status != nil {
		o.Status = *req.Status
	}
	if req.Reviewer != nil {
		o.Reviewer = *req.Reviewer
	}
	if req.Target != nil {
		o.Target = *req.Target
	}
	if req.Limit != nil {
		o.Limit = *req.Limit
	}
	if err := validateEnums(o.SectionType, o.Status, o.Reviewer); err != nil {
		return nil, err
	}

	o.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) Delete(ctx context.Context, actingUserID, outlineID snowflake.ID) error {
	if _, err := s.requireOwner(ctx, actingUserID, outlineID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, outlineID)
}

func (s *service) requireOwner(ctx context.Context, actingUserID, outlineID snowflake.ID) (*domain.Outline, error) {
	o, err := s.repo.GetByID(ctx, outlineID)
	if err != nil {
		return nil, err
	}
	org, err := s.orgRepo.GetByID(ctx, o.OrgID)
	if err != nil {
		return nil, err
	}
	if org.OwnerID != actingUserID {
		return nil, orgdomain.ErrForbidden
	}
	return o, nil
}

func validateEnums(sectionType, status, reviewer string) error {
	if !domain.ValidSectionType(sectionType) {
		return domain.ErrInvalidSection
	}
	if !domain.ValidStatus(status) {
		return domain.ErrInvalidStatus
	}
	if !domain.ValidReviewer(reviewer) {
		return domain.ErrInvalidReviewer
	}
	return nil
}
