package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

type ExperienceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, experience *types.Experience) (*types.Experience, error)
	GetByID(ctx context.Context, tx *gorm.DB, experienceID uuid.UUID) (*types.Experience, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, experienceIDs []uuid.UUID) ([]*types.Experience, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Experience, error)
}

type experienceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExperienceRepo(db *gorm.DB, baseLog *logger.Logger) ExperienceRepo {
	repoLog := baseLog.With("repo", "ExperienceRepo")
	return &experienceRepo{db: db, log: repoLog}
}

func (er *experienceRepo) Create(ctx context.Context, tx *gorm.DB, experience *types.Experience) (*types.Experience, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	if experience == nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(experience).Error; err != nil {
		return nil, err
	}
	return experience, nil
}

func (er *experienceRepo) GetByID(ctx context.Context, tx *gorm.DB, experienceID uuid.UUID) (*types.Experience, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	var result types.Experience
	err := transaction.WithContext(ctx).
		Where("id = ?", experienceID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (er *experienceRepo) GetByIDs(ctx context.Context, tx *gorm.DB, experienceIDs []uuid.UUID) ([]*types.Experience, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	var results []*types.Experience
	if len(experienceIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", experienceIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (er *experienceRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Experience, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	var results []*types.Experience
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
