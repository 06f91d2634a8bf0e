package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pathfinder-hq/pathfinder-backend/internal/apierr"
	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/repos"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

type CatalogService interface {
	// List returns the catalog in stable category/area/sub-code order.
	List(ctx context.Context, filter *repos.CompetencyFilter) ([]*types.Competency, error)
	GetByID(ctx context.Context, competencyID uuid.UUID) (*types.Competency, error)
	GetByCode(ctx context.Context, code string) (*types.Competency, error)
	// Reseed fully replaces the catalog. Administrative operation; it either
	// commits the whole new catalog or leaves the old one untouched.
	Reseed(ctx context.Context, competencies []*types.Competency) error
}

type catalogService struct {
	log   *logger.Logger
	repo  repos.CompetencyRepo
	cache CatalogCache
}

// NewCatalogService builds the catalog service. cache may be nil; the
// service then always reads through to the database.
func NewCatalogService(log *logger.Logger, repo repos.CompetencyRepo, cache CatalogCache) CatalogService {
	return &catalogService{
		log:   log.With("service", "CatalogService"),
		repo:  repo,
		cache: cache,
	}
}

func (cs *catalogService) List(ctx context.Context, filter *repos.CompetencyFilter) ([]*types.Competency, error) {
	unfiltered := filter == nil || (filter.Category == "" && filter.EVRRelevance == "")
	if unfiltered && cs.cache != nil {
		if cached, ok := cs.cache.Get(ctx); ok {
			return cached, nil
		}
	}

	competencies, err := cs.repo.List(ctx, nil, filter)
	if err != nil {
		return nil, err
	}
	if unfiltered && cs.cache != nil {
		cs.cache.Set(ctx, competencies)
	}
	return competencies, nil
}

func (cs *catalogService) GetByID(ctx context.Context, competencyID uuid.UUID) (*types.Competency, error) {
	competency, err := cs.repo.GetByID(ctx, nil, competencyID)
	if err != nil {
		return nil, err
	}
	if competency == nil {
		return nil, fmt.Errorf("competency %s: %w", competencyID, apierr.ErrNotFound)
	}
	return competency, nil
}

func (cs *catalogService) GetByCode(ctx context.Context, code string) (*types.Competency, error) {
	competency, err := cs.repo.GetByCode(ctx, nil, code)
	if err != nil {
		return nil, err
	}
	if competency == nil {
		return nil, fmt.Errorf("competency %s: %w", code, apierr.ErrNotFound)
	}
	return competency, nil
}

func (cs *catalogService) Reseed(ctx context.Context, competencies []*types.Competency) error {
	if len(competencies) == 0 {
		return fmt.Errorf("refusing to reseed an empty catalog: %w", apierr.ErrValidation)
	}
	seen := map[string]bool{}
	for _, c := range competencies {
		if c.Code == "" {
			return fmt.Errorf("competency with empty code in seed set: %w", apierr.ErrValidation)
		}
		if seen[c.Code] {
			return fmt.Errorf("duplicate competency code %s in seed set: %w", c.Code, apierr.ErrValidation)
		}
		seen[c.Code] = true
	}

	if err := cs.repo.ReseedAll(ctx, competencies); err != nil {
		return err
	}
	if cs.cache != nil {
		cs.cache.Invalidate(ctx)
	}
	cs.log.Info("Competency catalog reseeded", "count", len(competencies))
	return nil
}
