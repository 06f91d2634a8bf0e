package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pathfinder-hq/pathfinder-backend/internal/apierr"
	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/repos"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

type CreateExperienceRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	ExperienceType string     `json:"experience_type"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
}

type ExperienceService interface {
	Create(ctx context.Context, userID uuid.UUID, req *CreateExperienceRequest) (*types.Experience, error)
	GetByID(ctx context.Context, userID, experienceID uuid.UUID) (*types.Experience, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Experience, error)
}

type experienceService struct {
	log         *logger.Logger
	experiences repos.ExperienceRepo
}

func NewExperienceService(log *logger.Logger, experiences repos.ExperienceRepo) ExperienceService {
	return &experienceService{
		log:         log.With("service", "ExperienceService"),
		experiences: experiences,
	}
}

func (es *experienceService) Create(ctx context.Context, userID uuid.UUID, req *CreateExperienceRequest) (*types.Experience, error) {
	if req == nil {
		return nil, fmt.Errorf("empty experience request: %w", apierr.ErrValidation)
	}
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return nil, fmt.Errorf("title and description are required: %w", apierr.ErrValidation)
	}
	if req.StartDate.IsZero() {
		return nil, fmt.Errorf("start date is required: %w", apierr.ErrValidation)
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("end date precedes start date: %w", apierr.ErrValidation)
	}

	experienceType := req.ExperienceType
	switch experienceType {
	case "":
		experienceType = "work"
	case "work", "volunteer", "education":
	default:
		return nil, fmt.Errorf("unknown experience type %q: %w", experienceType, apierr.ErrValidation)
	}

	return es.experiences.Create(ctx, nil, &types.Experience{
		UserID:         userID,
		Title:          title,
		Description:    description,
		ExperienceType: experienceType,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
	})
}

func (es *experienceService) GetByID(ctx context.Context, userID, experienceID uuid.UUID) (*types.Experience, error) {
	experience, err := es.experiences.GetByID(ctx, nil, experienceID)
	if err != nil {
		return nil, err
	}
	if experience == nil || experience.UserID != userID {
		return nil, fmt.Errorf("experience %s: %w", experienceID, apierr.ErrNotFound)
	}
	return experience, nil
}

func (es *experienceService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Experience, error) {
	return es.experiences.ListByUser(ctx, nil, userID)
}
