package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/teamspace/internal/notification/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *domain.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) Update(ctx context.Context, n *domain.Notification) error {
	return r.db.WithContext(ctx).Save(n).Error
}

func (r *repository) GetByID(ctx context.Context, id snowflake.ID) (*domain.Notification, error) {
	var n domain.Notification
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *repository) ListByUser(ctx context.Context, userID snowflake.ID, unreadOnly bool, limit int) ([]domain.Notification, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var items []domain.Notification
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindUnreadByTypeRef(ctx context.Context, userID snowflake.ID, typ, refKey, refValue string) (*domain.Notification, error) {
	var n domain.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND read = ?", userID, typ, false).
		Where(datatypes.JSONQuery("metadata").Equals(refValue, refKey)).
		First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *repository) MarkRead(ctx context.Context, userID snowflake.ID, ids []snowflake.ID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND id IN ? AND read = ?", userID, ids, false).
		Update("read", true).Error
}

func (r *repository) MarkAllRead(ctx context.Context, userID snowflake.ID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}
