package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/teamspace/internal/invitation/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, inv domain.Invitation) error {
	return r.db.WithContext(ctx).Create(&inv).Error
}

func (r *repository) GetByID(ctx context.Context, id snowflake.ID) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *repository) FindLatestByOrgAndEmail(ctx context.Context, orgID snowflake.ID, email string) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND email = ?", orgID, email).
		Order("created_at DESC").
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *repository) ListByOrg(ctx context.Context, orgID snowflake.ID) ([]domain.Invitation, error) {
	var invs []domain.Invitation
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Find(&invs).Error
	if err != nil {
		return nil, err
	}
	return invs, nil
}

func (r *repository) TransitionStatus(ctx context.Context, id snowflake.ID, from, to string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Invitation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
