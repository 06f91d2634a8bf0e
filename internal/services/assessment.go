package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathfinder-hq/pathfinder-backend/internal/apierr"
	"github.com/pathfinder-hq/pathfinder-backend/internal/config"
	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/repos"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

type AssessmentService interface {
	// Assess recomputes the assessment for one (user, competency) pair from
	// the mappings and responses on record. targetLevel 0 means "use the
	// competency's EVR-implied default". Idempotent: re-running against
	// unchanged inputs writes the same result.
	Assess(ctx context.Context, userID, competencyID uuid.UUID, targetLevel int) (*types.ProficiencyAssessment, error)
	// AssessAll recomputes every competency in the catalog for the user.
	AssessAll(ctx context.Context, userID uuid.UUID) ([]*types.ProficiencyAssessment, error)
	GetByPair(ctx context.Context, userID, competencyID uuid.UUID) (*types.ProficiencyAssessment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.ProficiencyAssessment, error)
}

type assessmentService struct {
	log         *logger.Logger
	db          *gorm.DB
	assessments repos.AssessmentRepo
	mappings    repos.MappingRepo
	responses   repos.PertResponseRepo
	catalog     CatalogService
	policy      config.ScoringPolicy
}

func NewAssessmentService(
	log *logger.Logger,
	db *gorm.DB,
	assessments repos.AssessmentRepo,
	mappings repos.MappingRepo,
	responses repos.PertResponseRepo,
	catalog CatalogService,
	policy config.ScoringPolicy,
) AssessmentService {
	return &assessmentService{
		log:         log.With("service", "AssessmentService"),
		db:          db,
		assessments: assessments,
		mappings:    mappings,
		responses:   responses,
		catalog:     catalog,
		policy:      policy,
	}
}

func (as *assessmentService) Assess(ctx context.Context, userID, competencyID uuid.UUID, targetLevel int) (*types.ProficiencyAssessment, error) {
	if targetLevel < 0 || targetLevel > 2 {
		return nil, fmt.Errorf("target level must be 0 (default), 1 or 2, got %d: %w", targetLevel, apierr.ErrValidation)
	}
	competency, err := as.catalog.GetByID(ctx, competencyID)
	if err != nil {
		return nil, err
	}

	assessment, err := as.compute(ctx, nil, userID, competency, targetLevel)
	if err != nil {
		return nil, err
	}
	return as.assessments.Upsert(ctx, nil, assessment)
}

func (as *assessmentService) AssessAll(ctx context.Context, userID uuid.UUID) ([]*types.ProficiencyAssessment, error) {
	competencies, err := as.catalog.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	results := make([]*types.ProficiencyAssessment, 0, len(competencies))
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, competency := range competencies {
			assessment, err := as.compute(ctx, tx, userID, competency, 0)
			if err != nil {
				return err
			}
			saved, err := as.assessments.Upsert(ctx, tx, assessment)
			if err != nil {
				return err
			}
			results = append(results, saved)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	as.log.Info("Reassessed user against catalog", "user_id", userID, "competencies", len(results))
	return results, nil
}

func (as *assessmentService) GetByPair(ctx context.Context, userID, competencyID uuid.UUID) (*types.ProficiencyAssessment, error) {
	return as.assessments.GetByPair(ctx, nil, userID, competencyID)
}

func (as *assessmentService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.ProficiencyAssessment, error) {
	return as.assessments.ListByUser(ctx, nil, userID)
}

// compute derives the assessment without persisting it. The demonstrated
// level comes from the strongest artifact on record: a current compliant
// PERT response wins outright; otherwise the best validated mapping
// suggestion counts; otherwise the level is 0.
func (as *assessmentService) compute(ctx context.Context, tx *gorm.DB, userID uuid.UUID, competency *types.Competency, targetLevel int) (*types.ProficiencyAssessment, error) {
	// Only mappings at or above the level-1 threshold carry evidential
	// weight; the persistence floor is looser by design.
	mappings, err := as.mappings.ListByUserCompetency(ctx, tx, userID, competency.ID, as.policy.Level1Threshold)
	if err != nil {
		return nil, err
	}
	current, err := as.responses.GetCurrent(ctx, tx, userID, competency.ID)
	if err != nil {
		return nil, err
	}

	currentLevel := 0
	if current != nil && current.IsCompliant {
		currentLevel = current.ProficiencyLevel
	} else {
		for _, m := range mappings {
			if m.IsValidated && m.SuggestedLevel > currentLevel {
				currentLevel = m.SuggestedLevel
			}
		}
	}

	// Evidence is counted as distinct experiences across both signals.
	experienceSet := map[uuid.UUID]bool{}
	for _, m := range mappings {
		experienceSet[m.ExperienceID] = true
	}
	if current != nil {
		experienceSet[current.ExperienceID] = true
	}
	evidenceCount := len(experienceSet)

	if targetLevel == 0 {
		targetLevel = competency.DefaultTargetLevel()
	}
	return &types.ProficiencyAssessment{
		UserID:           userID,
		CompetencyID:     competency.ID,
		CurrentLevel:     currentLevel,
		TargetLevel:      targetLevel,
		EvidenceCount:    evidenceCount,
		DevelopmentNotes: developmentNotes(competency, currentLevel, targetLevel, evidenceCount, current != nil),
		AssessedAt:       time.Now(),
	}, nil
}

func developmentNotes(competency *types.Competency, currentLevel, targetLevel, evidenceCount int, hasResponse bool) string {
	if currentLevel >= targetLevel {
		return ""
	}
	if evidenceCount == 0 {
		return fmt.Sprintf("No mapped experience demonstrates %s yet. Seek work covering: %s",
			competency.Code, competency.Level1Criteria)
	}
	if !hasResponse {
		return fmt.Sprintf("Mapped experience exists for %s but no PERT response has been written. Draft a response demonstrating: %s",
			competency.Code, criteriaForLevel(competency, targetLevel))
	}
	return fmt.Sprintf("Current response for %s demonstrates level %d; target is level %d. Strengthen the response against: %s",
		competency.Code, currentLevel, targetLevel, criteriaForLevel(competency, targetLevel))
}

func criteriaForLevel(competency *types.Competency, level int) string {
	if level >= 2 {
		return competency.Level2Criteria
	}
	return competency.Level1Criteria
}
