package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/pathfinder-hq/pathfinder-backend/internal/apierr"
	"github.com/pathfinder-hq/pathfinder-backend/internal/repos"
	"github.com/pathfinder-hq/pathfinder-backend/internal/seed"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

func newCatalogService(t *testing.T) (CatalogService, repos.CompetencyRepo) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	repo := repos.NewCompetencyRepo(db, log)
	return NewCatalogService(log, repo, nil), repo
}

func TestReseedAndListOrdering(t *testing.T) {
	service, _ := newCatalogService(t)
	ctx := context.Background()

	if err := service.Reseed(ctx, seed.CompetencyCatalog()); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	competencies, err := service.List(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if want := len(seed.CompetencyCatalog()); len(competencies) != want {
		t.Fatalf("catalog has %d rows, want %d", len(competencies), want)
	}

	// Stable order: category, then area code, then sub code.
	wantOrder := []string{"EN1", "EN2", "EN3", "EN4", "EN5", "AA1", "FN1", "FR1", "MA1", "SP1", "TX1"}
	for i, c := range competencies {
		if c.Code != wantOrder[i] {
			t.Fatalf("position %d has %s, want %s", i, c.Code, wantOrder[i])
		}
	}
}

func TestListFilters(t *testing.T) {
	service, _ := newCatalogService(t)
	ctx := context.Background()

	if err := service.Reseed(ctx, seed.CompetencyCatalog()); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	technical, err := service.List(ctx, &repos.CompetencyFilter{Category: types.CompetencyCategoryTechnical})
	if err != nil {
		t.Fatalf("list technical: %v", err)
	}
	if len(technical) != 6 {
		t.Errorf("technical filter returned %d rows, want 6", len(technical))
	}
	for _, c := range technical {
		if c.Category != types.CompetencyCategoryTechnical {
			t.Errorf("filter leaked %s (%s)", c.Code, c.Category)
		}
	}

	high, err := service.List(ctx, &repos.CompetencyFilter{EVRRelevance: types.EVRRelevanceHigh})
	if err != nil {
		t.Fatalf("list high: %v", err)
	}
	for _, c := range high {
		if c.EVRRelevance != types.EVRRelevanceHigh {
			t.Errorf("relevance filter leaked %s (%s)", c.Code, c.EVRRelevance)
		}
	}
}

func TestReseedReplacesCatalog(t *testing.T) {
	service, _ := newCatalogService(t)
	ctx := context.Background()

	if err := service.Reseed(ctx, seed.CompetencyCatalog()); err != nil {
		t.Fatalf("first reseed: %v", err)
	}

	replacement := []*types.Competency{
		{
			Code: "ZZ1", Category: types.CompetencyCategoryTechnical,
			AreaCode: "ZZ", AreaName: "Test Area", SubCode: "ZZ1", SubName: "Test Sub",
			Description: "d", EVRRelevance: types.EVRRelevanceLow,
			Level1Criteria: "c1", Level2Criteria: "c2", GuidingQuestions: "q",
		},
	}
	if err := service.Reseed(ctx, replacement); err != nil {
		t.Fatalf("second reseed: %v", err)
	}

	competencies, err := service.List(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(competencies) != 1 || competencies[0].Code != "ZZ1" {
		t.Errorf("reseed did not replace the catalog: %d rows", len(competencies))
	}
}

func TestReseedValidation(t *testing.T) {
	service, _ := newCatalogService(t)
	ctx := context.Background()

	if err := service.Reseed(ctx, nil); !apierr.IsValidation(err) {
		t.Errorf("empty reseed error = %v, want validation error", err)
	}

	duplicate := seed.CompetencyCatalog()
	duplicate = append(duplicate, duplicate[0])
	if err := service.Reseed(ctx, duplicate); !apierr.IsValidation(err) {
		t.Errorf("duplicate code reseed error = %v, want validation error", err)
	}
}

func TestGetByCodeAndID(t *testing.T) {
	service, _ := newCatalogService(t)
	ctx := context.Background()

	if err := service.Reseed(ctx, seed.CompetencyCatalog()); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	aa1, err := service.GetByCode(ctx, "AA1")
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if aa1.SubName != "Internal Control Assessment" {
		t.Errorf("AA1 sub name %q", aa1.SubName)
	}

	byID, err := service.GetByID(ctx, aa1.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Code != "AA1" {
		t.Errorf("lookup by id returned %s", byID.Code)
	}

	if _, err := service.GetByCode(ctx, "XX9"); !apierr.IsNotFound(err) {
		t.Errorf("unknown code error = %v, want not found", err)
	}
	if _, err := service.GetByID(ctx, uuid.New()); !apierr.IsNotFound(err) {
		t.Errorf("unknown id error = %v, want not found", err)
	}
}

func TestDefaultTargetLevel(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"AA1", 2}, // HIGH technical
		{"FR1", 2},
		{"TX1", 2},
		{"MA1", 1}, // MEDIUM technical
		{"SP1", 1},
		{"EN1", 1}, // enabling, even at HIGH relevance
		{"EN4", 1},
	}
	for _, tt := range tests {
		c := seedCompetency(t, tt.code)
		if got := c.DefaultTargetLevel(); got != tt.want {
			t.Errorf("%s default target level %d, want %d", tt.code, got, tt.want)
		}
	}
}
