package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/teamspace/internal/verification/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, v domain.Verification) error {
	return r.db.WithContext(ctx).Create(&v).Error
}

func (r *repository) FindByKindAndToken(ctx context.Context, kind, token string) (*domain.Verification, error) {
	var v domain.Verification
	err := r.db.WithContext(ctx).
		Where("kind = ? AND token = ?", kind, token).
		First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	return &v, nil
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Verification{}).Error
}

func (r *repository) DeleteByKindAndToken(ctx context.Context, kind, token string) error {
	return r.db.WithContext(ctx).
		Where("kind = ? AND token = ?", kind, token).
		Delete(&domain.Verification{}).Error
}
