package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

type PertResponseRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, responseID uuid.UUID) (*types.PertResponse, error)
	GetCurrent(ctx context.Context, tx *gorm.DB, userID, competencyID uuid.UUID) (*types.PertResponse, error)
	// ListVersions returns every version for the pair, oldest first.
	ListVersions(ctx context.Context, tx *gorm.DB, userID, competencyID uuid.UUID) ([]*types.PertResponse, error)
	ListCurrentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PertResponse, error)
	MaxVersion(ctx context.Context, tx *gorm.DB, userID, competencyID uuid.UUID) (int, error)
	// Archive copies the row into pert_response_history and clears its
	// is_current flag. Meant to run inside the same transaction as the
	// follow-up Insert.
	Archive(ctx context.Context, tx *gorm.DB, response *types.PertResponse) error
	Insert(ctx context.Context, tx *gorm.DB, response *types.PertResponse) (*types.PertResponse, error)
	ListHistoryRows(ctx context.Context, tx *gorm.DB, userID, competencyID uuid.UUID) ([]*types.PertResponseHistory, error)
}

type pertResponseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPertResponseRepo(db *gorm.DB, baseLog *logger.Logger) PertResponseRepo {
	repoLog := baseLog.With("repo", "PertResponseRepo")
	return &pertResponseRepo{db: db, log: repoLog}
}

func (pr *pertResponseRepo) GetByID(ctx context.Context, tx *gorm.DB, responseID uuid.UUID) (*types.PertResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var result types.PertResponse
	err := transaction.WithContext(ctx).
		Where("id = ?", responseID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (pr *pertResponseRepo) GetCurrent(ctx context.Context, tx *gorm.DB, userID, competencyID uuid.UUID) (*types.PertResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var result types.PertResponse
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND competency_id = ? AND is_current = ?", userID, competencyID, true).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (pr *pertResponseRepo) ListVersions(ctx context.Context, tx *gorm.DB, userID, competencyID uuid.UUID) ([]*types.PertResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.PertResponse
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND competency_id = ?", userID, competencyID).
		Order("version ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *pertResponseRepo) ListCurrentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PertResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.PertResponse
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND is_current = ?", userID, true).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *pertResponseRepo) MaxVersion(ctx context.Context, tx *gorm.DB, userID, competencyID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var max *int
	if err := transaction.WithContext(ctx).
		Model(&types.PertResponse{}).
		Select("MAX(version)").
		Where("user_id = ? AND competency_id = ?", userID, competencyID).
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (pr *pertResponseRepo) Archive(ctx context.Context, tx *gorm.DB, response *types.PertResponse) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if response == nil {
		return nil
	}

	now := time.Now()
	snapshot := &types.PertResponseHistory{
		ResponseID:       response.ID,
		UserID:           response.UserID,
		CompetencyID:     response.CompetencyID,
		ExperienceID:     response.ExperienceID,
		Version:          response.Version,
		ProficiencyLevel: response.ProficiencyLevel,
		Situation:        response.Situation,
		Task:             response.Task,
		Action:           response.Action,
		Result:           response.Result,
		ResponseText:     response.ResponseText,
		CharacterCount:   response.CharacterCount,
		QuantifiedImpact: response.QuantifiedImpact,
		IsCompliant:      response.IsCompliant,
		ArchivedAt:       now,
	}
	if err := transaction.WithContext(ctx).Create(snapshot).Error; err != nil {
		return err
	}

	res := transaction.WithContext(ctx).
		Model(&types.PertResponse{}).
		Where("id = ? AND is_current = ?", response.ID, true).
		Updates(map[string]interface{}{"is_current": false, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Someone else already archived it inside a concurrent save.
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (pr *pertResponseRepo) Insert(ctx context.Context, tx *gorm.DB, response *types.PertResponse) (*types.PertResponse, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if response == nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(response).Error; err != nil {
		return nil, err
	}
	return response, nil
}

func (pr *pertResponseRepo) ListHistoryRows(ctx context.Context, tx *gorm.DB, userID, competencyID uuid.UUID) ([]*types.PertResponseHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.PertResponseHistory
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND competency_id = ?", userID, competencyID).
		Order("version ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
