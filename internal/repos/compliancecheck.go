package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

type ComplianceCheckRepo interface {
	// Create appends a new immutable check row. There is no update path.
	Create(ctx context.Context, tx *gorm.DB, check *types.ComplianceCheck) (*types.ComplianceCheck, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ComplianceCheck, error)
}

type complianceCheckRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewComplianceCheckRepo(db *gorm.DB, baseLog *logger.Logger) ComplianceCheckRepo {
	repoLog := baseLog.With("repo", "ComplianceCheckRepo")
	return &complianceCheckRepo{db: db, log: repoLog}
}

func (ccr *complianceCheckRepo) Create(ctx context.Context, tx *gorm.DB, check *types.ComplianceCheck) (*types.ComplianceCheck, error) {
	transaction := tx
	if transaction == nil {
		transaction = ccr.db
	}
	if check == nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(check).Error; err != nil {
		return nil, err
	}
	return check, nil
}

func (ccr *complianceCheckRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ComplianceCheck, error) {
	transaction := tx
	if transaction == nil {
		transaction = ccr.db
	}

	var results []*types.ComplianceCheck
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("checked_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
