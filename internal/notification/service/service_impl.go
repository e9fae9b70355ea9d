package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/teamspace/internal/notification/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func NewService(log *zap.Logger, repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &service{
		log:   log.Named("notification.service"),
		repo:  repo,
		genID: genID,
	}
}

func (s *service) Notify(ctx context.Context, req domain.CreateRequest) (*domain.Notification, error) {
	n := &domain.Notification{
		ID:        s.genID.Generate(),
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		Metadata:  datatypes.JSONMap(req.Metadata),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *service) Upsert(ctx context.Context, req domain.CreateRequest, refKey string) (*domain.Notification, error) {
	refValue, _ := req.Metadata[refKey].(string)
	if refValue == "" {
		return s.Notify(ctx, req)
	}

	existing, err := s.repo.FindUnreadByTypeRef(ctx, req.UserID, req.Type, refKey, refValue)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s.Notify(ctx, req)
		}
		return nil, err
	}

	existing.Title = req.Title
	existing.Message = req.Message
	existing.Metadata = datatypes.JSONMap(req.Metadata)
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *service) Get(ctx context.Context, id snowflake.ID) (*domain.Notification, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, userID snowflake.ID, unreadOnly bool) ([]domain.Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, domain.ListLimit)
}

func (s *service) MarkReadByRef(ctx context.Context, userID snowflake.ID, typ, refKey, refValue string) error {
	existing, err := s.repo.FindUnreadByTypeRef(ctx, userID, typ, refKey, refValue)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.repo.MarkRead(ctx, userID, []snowflake.ID{existing.ID})
}

func (s *service) MarkRead(ctx context.Context, userID snowflake.ID, ids []snowflake.ID) error {
	return s.repo.MarkRead(ctx, userID, ids)
}

func (s *service) MarkAllRead(ctx context.Context, userID snowflake.ID) error {
	return s.repo.MarkAllRead(ctx, userID)
}
