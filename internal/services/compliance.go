package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pathfinder-hq/pathfinder-backend/internal/apierr"
	"github.com/pathfinder-hq/pathfinder-backend/internal/config"
	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/repos"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

// complianceValidityDays is how long a check result stands before the
// candidate should re-run it.
const complianceValidityDays = 90

type ComplianceService interface {
	// Check evaluates the EVR rules against the user's current record and
	// appends an immutable snapshot row. Re-checking never mutates history.
	Check(ctx context.Context, userID uuid.UUID, checkType string) (*types.ComplianceCheck, error)
	History(ctx context.Context, userID uuid.UUID) ([]*types.ComplianceCheck, error)
}

type complianceService struct {
	log         *logger.Logger
	checks      repos.ComplianceCheckRepo
	responses   repos.PertResponseRepo
	mappings    repos.MappingRepo
	experiences repos.ExperienceRepo
	catalog     CatalogService
	policy      config.CompliancePolicy
}

func NewComplianceService(
	log *logger.Logger,
	checks repos.ComplianceCheckRepo,
	responses repos.PertResponseRepo,
	mappings repos.MappingRepo,
	experiences repos.ExperienceRepo,
	catalog CatalogService,
	policy config.CompliancePolicy,
) ComplianceService {
	return &complianceService{
		log:         log.With("service", "ComplianceService"),
		checks:      checks,
		responses:   responses,
		mappings:    mappings,
		experiences: experiences,
		catalog:     catalog,
		policy:      policy,
	}
}

func (cs *complianceService) Check(ctx context.Context, userID uuid.UUID, checkType string) (*types.ComplianceCheck, error) {
	switch checkType {
	case types.ComplianceCheckInitial, types.ComplianceCheckAnnual, types.ComplianceCheckFinal:
	default:
		return nil, fmt.Errorf("unknown check type %q: %w", checkType, apierr.ErrValidation)
	}

	competencies, err := cs.catalog.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	responses, err := cs.responses.ListCurrentByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	mappings, err := cs.mappings.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	experiences, err := cs.experiences.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	// Only HIGH and MEDIUM EVR-relevance competencies count toward the met
	// and missing rules.
	relevant := map[uuid.UUID]bool{}
	for _, competency := range competencies {
		if competency.EVRRelevance != types.EVRRelevanceLow {
			relevant[competency.ID] = true
		}
	}

	// A competency qualifies through the same precedence the assessor uses:
	// a compliant current response wins outright; otherwise the best
	// validated mapping suggestion. Experiences backing a qualifying
	// competency form the supporting set for the span and recency rules.
	levelByCompetency := map[uuid.UUID]int{}
	hasResponse := map[uuid.UUID]bool{}
	supportingExperiences := map[uuid.UUID]bool{}
	for _, r := range responses {
		if !r.IsCompliant || !relevant[r.CompetencyID] {
			continue
		}
		hasResponse[r.CompetencyID] = true
		levelByCompetency[r.CompetencyID] = r.ProficiencyLevel
		if r.ProficiencyLevel >= 1 {
			supportingExperiences[r.ExperienceID] = true
		}
	}
	for _, m := range mappings {
		if !m.IsValidated || m.SuggestedLevel < 1 || !relevant[m.CompetencyID] {
			continue
		}
		if hasResponse[m.CompetencyID] {
			continue
		}
		if m.SuggestedLevel > levelByCompetency[m.CompetencyID] {
			levelByCompetency[m.CompetencyID] = m.SuggestedLevel
		}
		supportingExperiences[m.ExperienceID] = true
	}

	met := 0
	level2 := 0
	var missing []string
	for _, competency := range competencies {
		if !relevant[competency.ID] {
			continue
		}
		if level := levelByCompetency[competency.ID]; level >= 1 {
			met++
			if level >= 2 {
				level2++
			}
		} else {
			missing = append(missing, competency.Code)
		}
	}
	sort.Strings(missing)
	missingJSON, err := json.Marshal(missing)
	if err != nil {
		return nil, err
	}

	var supporting []*types.Experience
	for _, e := range experiences {
		if supportingExperiences[e.ID] {
			supporting = append(supporting, e)
		}
	}
	windowStart, windowEnd, spanMet, recencyMet := cs.evaluateWindow(supporting, time.Now())

	now := time.Now()
	check := &types.ComplianceCheck{
		UserID:              userID,
		CheckType:           checkType,
		Passed:              met >= cs.policy.MinCompetencies && level2 >= cs.policy.MinLevel2 && spanMet && recencyMet,
		TotalCompetencies:   len(competencies),
		CompetenciesMet:     met,
		Level2Count:         level2,
		MissingCompetencies: missingJSON,
		WindowStart:         windowStart,
		WindowEnd:           windowEnd,
		SpanMet:             spanMet,
		RecencyMet:          recencyMet,
		CheckedAt:           now,
		ExpiresAt:           now.AddDate(0, 0, complianceValidityDays),
	}

	saved, err := cs.checks.Create(ctx, nil, check)
	if err != nil {
		return nil, err
	}
	cs.log.Info("Compliance check recorded",
		"user_id", userID,
		"check_type", checkType,
		"passed", saved.Passed,
		"met", met,
		"level2", level2,
	)
	return saved, nil
}

func (cs *complianceService) History(ctx context.Context, userID uuid.UUID) ([]*types.ComplianceCheck, error) {
	return cs.checks.ListByUser(ctx, nil, userID)
}

// evaluateWindow derives the supporting experience window and the
// span/recency rule outcomes. An experience without an end date is treated
// as ongoing through the check time.
func (cs *complianceService) evaluateWindow(experiences []*types.Experience, now time.Time) (*time.Time, *time.Time, bool, bool) {
	if len(experiences) == 0 {
		return nil, nil, false, false
	}

	start := experiences[0].StartDate
	end := experienceEnd(experiences[0], now)
	for _, e := range experiences[1:] {
		if e.StartDate.Before(start) {
			start = e.StartDate
		}
		if candidateEnd := experienceEnd(e, now); candidateEnd.After(end) {
			end = candidateEnd
		}
	}

	spanMet := monthsBetween(start, end) >= cs.policy.WindowMonths
	recencyMet := monthsBetween(end, now) <= cs.policy.RecencyMonths
	return &start, &end, spanMet, recencyMet
}

func experienceEnd(e *types.Experience, now time.Time) time.Time {
	if e.EndDate == nil || e.EndDate.After(now) {
		return now
	}
	return *e.EndDate
}

// monthsBetween counts whole calendar months from a to b, zero when b is not
// after a.
func monthsBetween(a, b time.Time) int {
	if !b.After(a) {
		return 0
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
