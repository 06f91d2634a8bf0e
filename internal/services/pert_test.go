package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathfinder-hq/pathfinder-backend/internal/apierr"
	"github.com/pathfinder-hq/pathfinder-backend/internal/repos"
	"github.com/pathfinder-hq/pathfinder-backend/internal/seed"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

type pertFixture struct {
	db           *gorm.DB
	service      PertService
	responses    repos.PertResponseRepo
	mappings     repos.MappingRepo
	userID       uuid.UUID
	experienceID uuid.UUID
	competencyID uuid.UUID
}

var validDraft = RenderResponseText(StarSections{
	Situation: "The audit client implemented a new revenue system mid-year.",
	Task:      "I was responsible for testing the internal controls over the new system.",
	Action:    "I performed walkthroughs, tested key controls and documented exceptions.",
	Result:    "Control deficiencies dropped by 40% after remediation and the audit finished on time.",
})

func newPertFixture(t *testing.T, client AIClient) *pertFixture {
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
	aa1, err := competencyRepo.GetByCode(ctx, nil, "AA1")
	if err != nil || aa1 == nil {
		t.Fatalf("load AA1: %v", err)
	}

	mappingRepo := repos.NewMappingRepo(db, log)
	if _, err := mappingRepo.Upsert(ctx, nil, &types.CompetencyMapping{
		UserID:         user.ID,
		ExperienceID:   experience.ID,
		CompetencyID:   aa1.ID,
		RelevanceScore: 0.87,
		MappingMethod:  types.MappingMethodAIAssisted,
		SuggestedLevel: 1,
	}); err != nil {
		t.Fatalf("seed mapping: %v", err)
	}

	responseRepo := repos.NewPertResponseRepo(db, log)
	catalog := NewCatalogService(log, competencyRepo, nil)
	auditor := NewAICallAuditor(log, repos.NewAICallLogRepo(db, log))
	service := NewPertService(log, db, responseRepo, repos.NewExperienceRepo(db, log), mappingRepo, catalog, client, auditor, testPolicy().Pert, testPolicy().Scoring)

	return &pertFixture{
		db:           db,
		service:      service,
		responses:    responseRepo,
		mappings:     mappingRepo,
		userID:       user.ID,
		experienceID: experience.ID,
		competencyID: aa1.ID,
	}
}

func (f *pertFixture) generate(t *testing.T) *types.PertResponse {
	t.Helper()
	response, err := f.service.Generate(context.Background(), f.userID, &GenerateRequest{
		CompetencyID:     f.competencyID,
		ExperienceID:     f.experienceID,
		ProficiencyLevel: 2,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return response
}

func TestGenerateCreatesFirstVersion(t *testing.T) {
	f := newPertFixture(t, &stubAIClient{completions: []string{validDraft}})

	response := f.generate(t)
	if response.Version != 1 {
		t.Errorf("first version = %d, want 1", response.Version)
	}
	if !response.IsCurrent {
		t.Error("generated response not marked current")
	}
	if response.ResponseText != validDraft {
		t.Error("stored response text differs from draft")
	}
	if want := utf8.RuneCountInString(validDraft); response.CharacterCount != want {
		t.Errorf("character count %d, want %d", response.CharacterCount, want)
	}
	if response.QuantifiedImpact == "" {
		t.Error("result section with a percentage should yield quantified impact")
	}
	if !response.IsCompliant {
		t.Error("complete in-limit response with quantified impact should be compliant")
	}

	parsed, err := ParseResponseText(response.ResponseText)
	if err != nil {
		t.Fatalf("stored text does not parse: %v", err)
	}
	if parsed.Situation != response.Situation || parsed.Result != response.Result {
		t.Error("stored sections disagree with rendered text")
	}
}

func TestUpdateCreatesNewVersionAndArchives(t *testing.T) {
	f := newPertFixture(t, &stubAIClient{completions: []string{validDraft}})
	ctx := context.Background()

	first := f.generate(t)

	edited := "The client migrated billing to a new platform during peak season."
	updated, err := f.service.Update(ctx, f.userID, f.competencyID, &UpdateRequest{Situation: &edited})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Version != 2 {
		t.Errorf("updated version = %d, want 2", updated.Version)
	}
	if updated.Situation != edited {
		t.Error("edited section not applied")
	}
	if updated.Task != first.Task {
		t.Error("untouched section changed")
	}

	current, err := f.service.GetCurrent(ctx, f.userID, f.competencyID)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if current.ID != updated.ID {
		t.Error("current does not point at the new version")
	}

	versions, err := f.service.History(ctx, f.userID, f.competencyID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("history has %d versions, want 2", len(versions))
	}
	if versions[0].Version != 1 || versions[1].Version != 2 {
		t.Errorf("history order wrong: %d, %d", versions[0].Version, versions[1].Version)
	}
	if versions[0].IsCurrent {
		t.Error("archived version still marked current")
	}

	snapshots, err := f.responses.ListHistoryRows(ctx, nil, f.userID, f.competencyID)
	if err != nil {
		t.Fatalf("history rows: %v", err)
	}
	if len(snapshots) != 1 || snapshots[0].Version != 1 {
		t.Errorf("expected one archived snapshot of version 1, got %d rows", len(snapshots))
	}
}

func TestUpdateRejectsOverCeiling(t *testing.T) {
	f := newPertFixture(t, &stubAIClient{completions: []string{validDraft}})
	ctx := context.Background()

	first := f.generate(t)

	oversized := strings.Repeat("a", testPolicy().Pert.MaxCharacters+1)
	_, err := f.service.Update(ctx, f.userID, f.competencyID, &UpdateRequest{Action: &oversized})
	if !apierr.IsValidation(err) {
		t.Fatalf("oversized edit error = %v, want validation error", err)
	}

	// The rejection must leave the current version untouched.
	current, err := f.service.GetCurrent(ctx, f.userID, f.competencyID)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if current.Version != 1 || current.ResponseText != first.ResponseText {
		t.Error("rejected edit mutated the current version")
	}
}

func TestUpdateRejectsEmptySection(t *testing.T) {
	f := newPertFixture(t, &stubAIClient{completions: []string{validDraft}})

	f.generate(t)
	empty := "   "
	_, err := f.service.Update(context.Background(), f.userID, f.competencyID, &UpdateRequest{Result: &empty})
	if !apierr.IsValidation(err) {
		t.Fatalf("blank section error = %v, want validation error", err)
	}
}

func TestGenerateRejectsMalformedDraft(t *testing.T) {
	f := newPertFixture(t, &stubAIClient{completions: []string{"here is a lovely essay with no structure"}})

	_, err := f.service.Generate(context.Background(), f.userID, &GenerateRequest{
		CompetencyID:     f.competencyID,
		ExperienceID:     f.experienceID,
		ProficiencyLevel: 1,
	})
	if !apierr.IsProvider(err) {
		t.Fatalf("malformed draft error = %v, want provider error", err)
	}

	if _, err := f.service.GetCurrent(context.Background(), f.userID, f.competencyID); !apierr.IsNotFound(err) {
		t.Errorf("failed generation should persist nothing, got %v", err)
	}
}

func TestGenerateRejectsOversizedDraft(t *testing.T) {
	huge := RenderResponseText(StarSections{
		Situation: strings.Repeat("s", 2000),
		Task:      strings.Repeat("t", 2000),
		Action:    strings.Repeat("a", 2000),
		Result:    "Saved $100k.",
	})
	f := newPertFixture(t, &stubAIClient{completions: []string{huge}})

	_, err := f.service.Generate(context.Background(), f.userID, &GenerateRequest{
		CompetencyID:     f.competencyID,
		ExperienceID:     f.experienceID,
		ProficiencyLevel: 2,
	})
	if !apierr.IsProvider(err) {
		t.Fatalf("oversized draft error = %v, want provider error", err)
	}
}

func TestGenerateValidatesLevel(t *testing.T) {
	f := newPertFixture(t, &stubAIClient{completions: []string{validDraft, validDraft}})

	for _, level := range []int{3, -1} {
		_, err := f.service.Generate(context.Background(), f.userID, &GenerateRequest{
			CompetencyID:     f.competencyID,
			ExperienceID:     f.experienceID,
			ProficiencyLevel: level,
		})
		if !apierr.IsValidation(err) {
			t.Errorf("level %d error = %v, want validation error", level, err)
		}
	}

	// Level 0 is a legitimate (no-claim) request.
	response, err := f.service.Generate(context.Background(), f.userID, &GenerateRequest{
		CompetencyID:     f.competencyID,
		ExperienceID:     f.experienceID,
		ProficiencyLevel: 0,
	})
	if err != nil {
		t.Fatalf("level 0 generate: %v", err)
	}
	if response.ProficiencyLevel != 0 {
		t.Errorf("stored level %d, want 0", response.ProficiencyLevel)
	}
}

func TestGenerateRequiresRelevantMapping(t *testing.T) {
	f := newPertFixture(t, &stubAIClient{completions: []string{validDraft}})
	ctx := context.Background()

	var tx1 types.Competency
	if err := f.db.Where("code = ?", "TX1").First(&tx1).Error; err != nil {
		t.Fatalf("load TX1: %v", err)
	}

	// No mapping ties the experience to TX1.
	_, err := f.service.Generate(ctx, f.userID, &GenerateRequest{
		CompetencyID:     tx1.ID,
		ExperienceID:     f.experienceID,
		ProficiencyLevel: 1,
	})
	if !apierr.IsValidation(err) {
		t.Fatalf("unmapped competency error = %v, want validation error", err)
	}

	// A mapping below the relevance floor is just as unusable.
	if _, err := f.mappings.Upsert(ctx, nil, &types.CompetencyMapping{
		UserID:         f.userID,
		ExperienceID:   f.experienceID,
		CompetencyID:   tx1.ID,
		RelevanceScore: 0.2,
		MappingMethod:  types.MappingMethodUserEdited,
		SuggestedLevel: 0,
	}); err != nil {
		t.Fatalf("upsert mapping: %v", err)
	}
	_, err = f.service.Generate(ctx, f.userID, &GenerateRequest{
		CompetencyID:     tx1.ID,
		ExperienceID:     f.experienceID,
		ProficiencyLevel: 1,
	})
	if !apierr.IsValidation(err) {
		t.Fatalf("low relevance mapping error = %v, want validation error", err)
	}

	if _, err := f.service.GetCurrent(ctx, f.userID, tx1.ID); !apierr.IsNotFound(err) {
		t.Errorf("rejected generation should persist nothing, got %v", err)
	}
}

func TestConcurrentUpdatesKeepOneCurrent(t *testing.T) {
	f := newPertFixture(t, &stubAIClient{completions: []string{validDraft}})
	ctx := context.Background()

	f.generate(t)

	const writers = 10
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			edit := "Concurrent edit attempt"
			_, errs[i] = f.service.Update(ctx, f.userID, f.competencyID, &UpdateRequest{Situation: &edit})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apierr.IsConflict(err):
		default:
			t.Fatalf("unexpected update error: %v", err)
		}
	}
	if succeeded == 0 {
		t.Fatal("no concurrent update succeeded")
	}

	versions, err := f.service.History(ctx, f.userID, f.competencyID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if want := succeeded + 1; len(versions) != want {
		t.Errorf("history has %d versions, want %d", len(versions), want)
	}
	currentCount := 0
	for i, v := range versions {
		if v.Version != i+1 {
			t.Errorf("versions not contiguous at index %d: got %d", i, v.Version)
		}
		if v.IsCurrent {
			currentCount++
		}
	}
	if currentCount != 1 {
		t.Errorf("%d versions marked current, want exactly 1", currentCount)
	}
	if last := versions[len(versions)-1]; !last.IsCurrent {
		t.Error("highest version is not the current one")
	}
}
