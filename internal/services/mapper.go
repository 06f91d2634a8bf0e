package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/pathfinder-hq/pathfinder-backend/internal/apierr"
	"github.com/pathfinder-hq/pathfinder-backend/internal/config"
	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/repos"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

// mapperConcurrency bounds in-flight provider calls per MapExperience run.
const mapperConcurrency = 4

type MappingResult struct {
	Mappings []*types.CompetencyMapping `json:"mappings"`
	// Degraded reports that at least one competency was scored without the
	// semantic signal (provider failure, keyword-only fallback).
	Degraded bool `json:"degraded"`
}

type MappingOverride struct {
	RelevanceScore *float64 `json:"relevance_score"`
	SuggestedLevel *int     `json:"suggested_level"`
	Evidence       []string `json:"evidence"`
}

type MapperService interface {
	// MapExperience scores one experience against the whole catalog and
	// persists every mapping at or above the relevance floor. Re-running
	// overwrites previous results for the same experience.
	MapExperience(ctx context.Context, userID, experienceID uuid.UUID) (*MappingResult, error)
	ListByExperience(ctx context.Context, userID, experienceID uuid.UUID) ([]*types.CompetencyMapping, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.CompetencyMapping, error)
	// Override lets the candidate correct an AI-assisted mapping; the row is
	// re-marked user_edited and loses any prior validation.
	Override(ctx context.Context, userID, mappingID uuid.UUID, override *MappingOverride) (*types.CompetencyMapping, error)
	// Validate marks a mapping mentor-validated (or clears the mark).
	Validate(ctx context.Context, userID, mappingID uuid.UUID, validated bool) (*types.CompetencyMapping, error)
}

type mapperService struct {
	log         *logger.Logger
	db          *gorm.DB
	experiences repos.ExperienceRepo
	mappings    repos.MappingRepo
	catalog     CatalogService
	scorer      *RelevanceScorer
	policy      config.ScoringPolicy
}

func NewMapperService(
	log *logger.Logger,
	db *gorm.DB,
	experiences repos.ExperienceRepo,
	mappings repos.MappingRepo,
	catalog CatalogService,
	scorer *RelevanceScorer,
	policy config.ScoringPolicy,
) MapperService {
	return &mapperService{
		log:         log.With("service", "MapperService"),
		db:          db,
		experiences: experiences,
		mappings:    mappings,
		catalog:     catalog,
		scorer:      scorer,
		policy:      policy,
	}
}

func (ms *mapperService) MapExperience(ctx context.Context, userID, experienceID uuid.UUID) (*MappingResult, error) {
	experience, err := ms.experiences.GetByID(ctx, nil, experienceID)
	if err != nil {
		return nil, err
	}
	if experience == nil || experience.UserID != userID {
		return nil, fmt.Errorf("experience %s: %w", experienceID, apierr.ErrNotFound)
	}
	if experience.Description == "" {
		return nil, fmt.Errorf("experience has no description to map: %w", apierr.ErrValidation)
	}

	competencies, err := ms.catalog.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(competencies) == 0 {
		return nil, fmt.Errorf("competency catalog is empty: %w", apierr.ErrValidation)
	}

	text := experience.Title + "\n" + experience.Description

	type scored struct {
		competency *types.Competency
		result     ScoreResult
	}

	var (
		mu       sync.Mutex
		kept     []scored
		degraded bool
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(mapperConcurrency)
	for _, competency := range competencies {
		competency := competency
		group.Go(func() error {
			result, err := ms.scorer.Score(groupCtx, text, competency)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if result.Degraded {
				degraded = true
			}
			if result.Score >= ms.policy.MinRelevance {
				kept = append(kept, scored{competency: competency, result: result})
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	// Stable persistence order keeps logs and API output deterministic.
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].result.Score != kept[j].result.Score {
			return kept[i].result.Score > kept[j].result.Score
		}
		return kept[i].competency.Code < kept[j].competency.Code
	})

	mappings := make([]*types.CompetencyMapping, 0, len(kept))
	err = ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range kept {
			quotes := ExtractEvidence(experience.Description, s.competency, ms.policy.MaxEvidence)
			evidence, err := json.Marshal(quotes)
			if err != nil {
				return err
			}
			mapping := &types.CompetencyMapping{
				UserID:         userID,
				ExperienceID:   experienceID,
				CompetencyID:   s.competency.ID,
				RelevanceScore: s.result.Score,
				Evidence:       evidence,
				MappingMethod:  types.MappingMethodAIAssisted,
				SuggestedLevel: ms.scorer.SuggestedLevel(s.result.Score),
			}
			saved, err := ms.mappings.Upsert(ctx, tx, mapping)
			if err != nil {
				return err
			}
			mappings = append(mappings, saved)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ms.log.Info("Mapped experience against catalog",
		"experience_id", experienceID,
		"catalog_size", len(competencies),
		"mappings", len(mappings),
		"degraded", degraded,
	)
	return &MappingResult{Mappings: mappings, Degraded: degraded}, nil
}

func (ms *mapperService) ListByExperience(ctx context.Context, userID, experienceID uuid.UUID) ([]*types.CompetencyMapping, error) {
	return ms.mappings.ListByExperience(ctx, nil, userID, experienceID)
}

func (ms *mapperService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.CompetencyMapping, error) {
	return ms.mappings.ListByUser(ctx, nil, userID)
}

func (ms *mapperService) Override(ctx context.Context, userID, mappingID uuid.UUID, override *MappingOverride) (*types.CompetencyMapping, error) {
	if override == nil {
		return nil, fmt.Errorf("empty override: %w", apierr.ErrValidation)
	}
	mapping, err := ms.ownedMapping(ctx, userID, mappingID)
	if err != nil {
		return nil, err
	}

	if override.RelevanceScore != nil {
		score := *override.RelevanceScore
		if score < 0 || score > 1 {
			return nil, fmt.Errorf("relevance score must be in [0,1], got %v: %w", score, apierr.ErrValidation)
		}
		mapping.RelevanceScore = score
	}
	if override.SuggestedLevel != nil {
		level := *override.SuggestedLevel
		if level < 0 || level > 2 {
			return nil, fmt.Errorf("suggested level must be 0, 1 or 2, got %d: %w", level, apierr.ErrValidation)
		}
		mapping.SuggestedLevel = level
	}
	if override.Evidence != nil {
		evidence, err := json.Marshal(override.Evidence)
		if err != nil {
			return nil, err
		}
		mapping.Evidence = evidence
	}

	// A user edit supersedes prior mentor validation.
	mapping.MappingMethod = types.MappingMethodUserEdited
	mapping.IsValidated = false
	return ms.mappings.Upsert(ctx, nil, mapping)
}

func (ms *mapperService) Validate(ctx context.Context, userID, mappingID uuid.UUID, validated bool) (*types.CompetencyMapping, error) {
	mapping, err := ms.ownedMapping(ctx, userID, mappingID)
	if err != nil {
		return nil, err
	}

	method := ""
	if validated {
		method = types.MappingMethodMentorValidated
	}
	if err := ms.mappings.SetValidated(ctx, nil, mapping.ID, validated, method); err != nil {
		return nil, err
	}
	return ms.mappings.GetByID(ctx, nil, mapping.ID)
}

func (ms *mapperService) ownedMapping(ctx context.Context, userID, mappingID uuid.UUID) (*types.CompetencyMapping, error) {
	mapping, err := ms.mappings.GetByID(ctx, nil, mappingID)
	if err != nil {
		return nil, err
	}
	if mapping == nil || mapping.UserID != userID {
		return nil, fmt.Errorf("mapping %s: %w", mappingID, apierr.ErrNotFound)
	}
	return mapping, nil
}
