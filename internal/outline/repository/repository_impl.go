package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/teamspace/internal/outline/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, o domain.Outline) error {
	return r.db.WithContext(ctx).Create(&o).Error
}

func (r *repository) GetByID(ctx context.Context, id snowflake.ID) (*domain.Outline, error) {
	var o domain.Outline
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *repository) ListByOrg(ctx context.Context, orgID snowflake.ID) ([]domain.Outline, error) {
	var outlines []domain.Outline
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at ASC").
		Find(&outlines).Error
	if err != nil {
		return nil, err
	}
	return outlines, nil
}

func (r *repository) Update(ctx context.Context, o *domain.Outline) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Outline{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
