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

type MappingRepo interface {
	// Upsert writes the mapping for its (user, experience, competency) tuple,
	// overwriting any prior row. Re-mapping never appends.
	Upsert(ctx context.Context, tx *gorm.DB, mapping *types.CompetencyMapping) (*types.CompetencyMapping, error)
	GetByID(ctx context.Context, tx *gorm.DB, mappingID uuid.UUID) (*types.CompetencyMapping, error)
	GetByTuple(ctx context.Context, tx *gorm.DB, userID, experienceID, competencyID uuid.UUID) (*types.CompetencyMapping, error)
	ListByExperience(ctx context.Context, tx *gorm.DB, userID, experienceID uuid.UUID) ([]*types.CompetencyMapping, error)
	ListByUserCompetency(ctx context.Context, tx *gorm.DB, userID, competencyID uuid.UUID, minRelevance float64) ([]*types.CompetencyMapping, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CompetencyMapping, error)
	SetValidated(ctx context.Context, tx *gorm.DB, mappingID uuid.UUID, validated bool, method string) error
}

type mappingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMappingRepo(db *gorm.DB, baseLog *logger.Logger) MappingRepo {
	repoLog := baseLog.With("repo", "MappingRepo")
	return &mappingRepo{db: db, log: repoLog}
}

func (mr *mappingRepo) Upsert(ctx context.Context, tx *gorm.DB, mapping *types.CompetencyMapping) (*types.CompetencyMapping, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if mapping == nil {
		return nil, nil
	}
	now := time.Now()
	mapping.UpdatedAt = now

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "experience_id"}, {Name: "competency_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"relevance_score", "evidence", "mapping_method", "is_validated", "suggested_level", "updated_at",
			}),
		}).Create(mapping).Error; err != nil {
		return nil, err
	}
	return mapping, nil
}

func (mr *mappingRepo) GetByID(ctx context.Context, tx *gorm.DB, mappingID uuid.UUID) (*types.CompetencyMapping, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var result types.CompetencyMapping
	err := transaction.WithContext(ctx).
		Where("id = ?", mappingID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (mr *mappingRepo) GetByTuple(ctx context.Context, tx *gorm.DB, userID, experienceID, competencyID uuid.UUID) (*types.CompetencyMapping, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var result types.CompetencyMapping
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND experience_id = ? AND competency_id = ?", userID, experienceID, competencyID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (mr *mappingRepo) ListByExperience(ctx context.Context, tx *gorm.DB, userID, experienceID uuid.UUID) ([]*types.CompetencyMapping, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var results []*types.CompetencyMapping
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND experience_id = ?", userID, experienceID).
		Order("relevance_score DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *mappingRepo) ListByUserCompetency(ctx context.Context, tx *gorm.DB, userID, competencyID uuid.UUID, minRelevance float64) ([]*types.CompetencyMapping, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var results []*types.CompetencyMapping
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND competency_id = ? AND relevance_score >= ?", userID, competencyID, minRelevance).
		Order("relevance_score DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *mappingRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CompetencyMapping, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var results []*types.CompetencyMapping
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *mappingRepo) SetValidated(ctx context.Context, tx *gorm.DB, mappingID uuid.UUID, validated bool, method string) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	updates := map[string]interface{}{
		"is_validated": validated,
		"updated_at":   time.Now(),
	}
	if method != "" {
		updates["mapping_method"] = method
	}
	res := transaction.WithContext(ctx).
		Model(&types.CompetencyMapping{}).
		Where("id = ?", mappingID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
