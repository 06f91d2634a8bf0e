package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

type CompetencyFilter struct {
	Category     string
	EVRRelevance string
}

type CompetencyRepo interface {
	List(ctx context.Context, tx *gorm.DB, filter *CompetencyFilter) ([]*types.Competency, error)
	GetByID(ctx context.Context, tx *gorm.DB, competencyID uuid.UUID) (*types.Competency, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.Competency, error)
	// ReseedAll replaces the whole catalog in one transaction: delete-all then
	// bulk insert. Any failure rolls the whole seed back.
	ReseedAll(ctx context.Context, competencies []*types.Competency) error
}

type competencyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompetencyRepo(db *gorm.DB, baseLog *logger.Logger) CompetencyRepo {
	repoLog := baseLog.With("repo", "CompetencyRepo")
	return &competencyRepo{db: db, log: repoLog}
}

func (cr *competencyRepo) List(ctx context.Context, tx *gorm.DB, filter *CompetencyFilter) ([]*types.Competency, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	query := transaction.WithContext(ctx).Model(&types.Competency{})
	if filter != nil {
		if filter.Category != "" {
			query = query.Where("category = ?", filter.Category)
		}
		if filter.EVRRelevance != "" {
			query = query.Where("evr_relevance = ?", filter.EVRRelevance)
		}
	}

	var results []*types.Competency
	if err := query.
		Order("category ASC").
		Order("area_code ASC").
		Order("sub_code ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *competencyRepo) GetByID(ctx context.Context, tx *gorm.DB, competencyID uuid.UUID) (*types.Competency, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var result types.Competency
	err := transaction.WithContext(ctx).
		Where("id = ?", competencyID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (cr *competencyRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.Competency, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var result types.Competency
	err := transaction.WithContext(ctx).
		Where("code = ?", code).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (cr *competencyRepo) ReseedAll(ctx context.Context, competencies []*types.Competency) error {
	return cr.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("1 = 1").Delete(&types.Competency{}).Error; err != nil {
			return err
		}
		if len(competencies) == 0 {
			return nil
		}
		if err := tx.Create(&competencies).Error; err != nil {
			return err
		}
		return nil
	})
}
