package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathfinder-hq/pathfinder-backend/internal/apierr"
	"github.com/pathfinder-hq/pathfinder-backend/internal/repos"
	"github.com/pathfinder-hq/pathfinder-backend/internal/seed"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

type mapperFixture struct {
	db           *gorm.DB
	service      MapperService
	mappings     repos.MappingRepo
	userID       uuid.UUID
	experienceID uuid.UUID
}

func newMapperFixture(t *testing.T, semantic SemanticScorer) *mapperFixture {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	ctx := context.Background()

	user := &types.User{Email: "candidate@example.com", Password: "x", FirstName: "Avery", LastName: "Chen"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	experience := &types.Experience{
		UserID:      user.ID,
		Title:       "Audit Senior",
		Description: auditExperienceText,
	}
	if err := db.Create(experience).Error; err != nil {
		t.Fatalf("create experience: %v", err)
	}

	competencyRepo := repos.NewCompetencyRepo(db, log)
	if err := competencyRepo.ReseedAll(ctx, seed.CompetencyCatalog()); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	policy := testPolicy().Scoring
	mappingRepo := repos.NewMappingRepo(db, log)
	catalog := NewCatalogService(log, competencyRepo, nil)
	scorer := NewRelevanceScorer(log, semantic, policy)
	service := NewMapperService(log, db, repos.NewExperienceRepo(db, log), mappingRepo, catalog, scorer, policy)

	return &mapperFixture{
		db:           db,
		service:      service,
		mappings:     mappingRepo,
		userID:       user.ID,
		experienceID: experience.ID,
	}
}

func mappingByCode(t *testing.T, f *mapperFixture, result *MappingResult, code string) *types.CompetencyMapping {
	t.Helper()
	var competency types.Competency
	if err := f.db.Where("code = ?", code).First(&competency).Error; err != nil {
		t.Fatalf("load competency %s: %v", code, err)
	}
	for _, m := range result.Mappings {
		if m.CompetencyID == competency.ID {
			return m
		}
	}
	return nil
}

func TestMapExperienceKeywordFallback(t *testing.T) {
	f := newMapperFixture(t, &stubSemanticScorer{err: errors.New("provider down")})
	ctx := context.Background()

	result, err := f.service.MapExperience(ctx, f.userID, f.experienceID)
	if err != nil {
		t.Fatalf("map experience: %v", err)
	}
	if !result.Degraded {
		t.Error("provider failure should mark the run degraded")
	}

	aa1 := mappingByCode(t, f, result, "AA1")
	if aa1 == nil {
		t.Fatal("audit experience did not map to AA1")
	}
	if aa1.RelevanceScore < 0.7 {
		t.Errorf("AA1 relevance %v, want >= 0.7", aa1.RelevanceScore)
	}
	if aa1.MappingMethod != types.MappingMethodAIAssisted {
		t.Errorf("mapping method %q, want %q", aa1.MappingMethod, types.MappingMethodAIAssisted)
	}
	if aa1.SuggestedLevel < 1 {
		t.Errorf("AA1 suggested level %d, want >= 1", aa1.SuggestedLevel)
	}

	var quotes []string
	if err := json.Unmarshal(aa1.Evidence, &quotes); err != nil {
		t.Fatalf("evidence is not a JSON string array: %v", err)
	}
	if len(quotes) == 0 {
		t.Error("AA1 mapping carries no evidence quotes")
	}
	if max := testPolicy().Scoring.MaxEvidence; len(quotes) > max {
		t.Errorf("evidence has %d quotes, cap is %d", len(quotes), max)
	}

	if tx1 := mappingByCode(t, f, result, "TX1"); tx1 != nil {
		t.Errorf("audit experience mapped to TX1 with score %v", tx1.RelevanceScore)
	}

	min := testPolicy().Scoring.MinRelevance
	for _, m := range result.Mappings {
		if m.RelevanceScore < min {
			t.Errorf("persisted mapping below relevance floor: %v", m.RelevanceScore)
		}
	}
}

func TestMapExperienceOverwritesOnRerun(t *testing.T) {
	f := newMapperFixture(t, &stubSemanticScorer{err: errors.New("provider down")})
	ctx := context.Background()

	first, err := f.service.MapExperience(ctx, f.userID, f.experienceID)
	if err != nil {
		t.Fatalf("first map: %v", err)
	}
	second, err := f.service.MapExperience(ctx, f.userID, f.experienceID)
	if err != nil {
		t.Fatalf("second map: %v", err)
	}
	if len(first.Mappings) != len(second.Mappings) {
		t.Errorf("re-map changed mapping count: %d -> %d", len(first.Mappings), len(second.Mappings))
	}

	stored, err := f.service.ListByExperience(ctx, f.userID, f.experienceID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != len(second.Mappings) {
		t.Errorf("re-map appended rows: %d stored, want %d", len(stored), len(second.Mappings))
	}
}

func TestMapExperienceBlendsSemanticScore(t *testing.T) {
	f := newMapperFixture(t, &stubSemanticScorer{score: 0.6})
	ctx := context.Background()

	result, err := f.service.MapExperience(ctx, f.userID, f.experienceID)
	if err != nil {
		t.Fatalf("map experience: %v", err)
	}
	if result.Degraded {
		t.Error("healthy provider run marked degraded")
	}

	// A middling semantic signal keeps lexically weak competencies under the
	// floor while strong lexical matches survive the blend.
	if aa1 := mappingByCode(t, f, result, "AA1"); aa1 == nil {
		t.Error("AA1 did not survive blending")
	}
	if tx1 := mappingByCode(t, f, result, "TX1"); tx1 != nil {
		t.Error("TX1 mapped despite low semantic and zero lexical signal")
	}
}

func TestMapExperienceUnknownExperience(t *testing.T) {
	f := newMapperFixture(t, &stubSemanticScorer{score: 0.9})

	_, err := f.service.MapExperience(context.Background(), f.userID, uuid.New())
	if !apierr.IsNotFound(err) {
		t.Fatalf("unknown experience error = %v, want not found", err)
	}
}

func TestOverrideMarksUserEdited(t *testing.T) {
	f := newMapperFixture(t, &stubSemanticScorer{err: errors.New("provider down")})
	ctx := context.Background()

	result, err := f.service.MapExperience(ctx, f.userID, f.experienceID)
	if err != nil {
		t.Fatalf("map experience: %v", err)
	}
	aa1 := mappingByCode(t, f, result, "AA1")
	if aa1 == nil {
		t.Fatal("AA1 mapping missing")
	}

	// Validate, then override; the override must clear the validation.
	if _, err := f.service.Validate(ctx, f.userID, aa1.ID, true); err != nil {
		t.Fatalf("validate: %v", err)
	}

	score := 0.95
	level := 2
	updated, err := f.service.Override(ctx, f.userID, aa1.ID, &MappingOverride{
		RelevanceScore: &score,
		SuggestedLevel: &level,
	})
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if updated.RelevanceScore != score || updated.SuggestedLevel != level {
		t.Error("override values not applied")
	}
	if updated.MappingMethod != types.MappingMethodUserEdited {
		t.Errorf("mapping method %q after override, want %q", updated.MappingMethod, types.MappingMethodUserEdited)
	}
	if updated.IsValidated {
		t.Error("override should clear mentor validation")
	}

	badScore := 1.5
	if _, err := f.service.Override(ctx, f.userID, aa1.ID, &MappingOverride{RelevanceScore: &badScore}); !apierr.IsValidation(err) {
		t.Errorf("out-of-range score error = %v, want validation error", err)
	}
}

func TestValidateMapping(t *testing.T) {
	f := newMapperFixture(t, &stubSemanticScorer{err: errors.New("provider down")})
	ctx := context.Background()

	result, err := f.service.MapExperience(ctx, f.userID, f.experienceID)
	if err != nil {
		t.Fatalf("map experience: %v", err)
	}
	aa1 := mappingByCode(t, f, result, "AA1")
	if aa1 == nil {
		t.Fatal("AA1 mapping missing")
	}

	validated, err := f.service.Validate(ctx, f.userID, aa1.ID, true)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !validated.IsValidated {
		t.Error("mapping not marked validated")
	}
	if validated.MappingMethod != types.MappingMethodMentorValidated {
		t.Errorf("mapping method %q, want %q", validated.MappingMethod, types.MappingMethodMentorValidated)
	}

	if _, err := f.service.Validate(ctx, uuid.New(), aa1.ID, true); !apierr.IsNotFound(err) {
		t.Errorf("foreign user validation error = %v, want not found", err)
	}
}
