package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

type AssessmentRepo interface {
	// Upsert replaces the cached assessment for (user, competency).
	Upsert(ctx context.Context, tx *gorm.DB, assessment *types.ProficiencyAssessment) (*types.ProficiencyAssessment, error)
	GetByPair(ctx context.Context, tx *gorm.DB, userID, competencyID uuid.UUID) (*types.ProficiencyAssessment, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ProficiencyAssessment, error)
}

type assessmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	repoLog := baseLog.With("repo", "AssessmentRepo")
	return &assessmentRepo{db: db, log: repoLog}
}

func (ar *assessmentRepo) Upsert(ctx context.Context, tx *gorm.DB, assessment *types.ProficiencyAssessment) (*types.ProficiencyAssessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if assessment == nil {
		return nil, nil
	}
	assessment.UpdatedAt = time.Now()

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "competency_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"current_level", "target_level", "evidence_count", "development_notes", "assessed_at", "updated_at",
			}),
		}).Create(assessment).Error; err != nil {
		return nil, err
	}
	return assessment, nil
}

func (ar *assessmentRepo) GetByPair(ctx context.Context, tx *gorm.DB, userID, competencyID uuid.UUID) (*types.ProficiencyAssessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var result types.ProficiencyAssessment
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND competency_id = ?", userID, competencyID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (ar *assessmentRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ProficiencyAssessment, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.ProficiencyAssessment
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
