package services

import (
	"context"
	"errors"
	"testing"

	"github.com/pathfinder-hq/pathfinder-backend/internal/seed"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

const auditExperienceText = "Performed audit fieldwork on the revenue cycle. " +
	"Tested internal controls over the billing process and documented deficiencies in working papers. " +
	"Drafted management letter points summarizing the control deficiencies for the engagement partner."

func seedCompetency(t *testing.T, code string) *types.Competency {
	t.Helper()
	for _, c := range seed.CompetencyCatalog() {
		if c.Code == code {
			return c
		}
	}
	t.Fatalf("competency %s not in seed catalog", code)
	return nil
}

func TestKeywordScoreDiscriminatesAreas(t *testing.T) {
	aa1 := seedCompetency(t, "AA1")
	tx1 := seedCompetency(t, "TX1")

	auditScore := KeywordScore(auditExperienceText, aa1)
	if auditScore < 0.7 {
		t.Errorf("audit text against AA1 scored %v, want >= 0.7", auditScore)
	}

	taxScore := KeywordScore(auditExperienceText, tx1)
	if taxScore >= 0.5 {
		t.Errorf("audit text against TX1 scored %v, want < 0.5", taxScore)
	}
}

func TestKeywordScoreMonotonic(t *testing.T) {
	aa1 := seedCompetency(t, "AA1")

	base := "Tested internal controls."
	extended := base + " Documented deficiencies in working papers during audit fieldwork."

	baseScore := KeywordScore(base, aa1)
	extendedScore := KeywordScore(extended, aa1)
	if extendedScore < baseScore {
		t.Errorf("more matched keywords lowered the score: %v -> %v", baseScore, extendedScore)
	}
}

func TestKeywordScoreBounds(t *testing.T) {
	aa1 := seedCompetency(t, "AA1")

	if got := KeywordScore("", aa1); got != 0 {
		t.Errorf("empty text scored %v, want 0", got)
	}
	if got := KeywordScore("unrelated gardening hobby sunshine", aa1); got != 0 {
		t.Errorf("unrelated text scored %v, want 0", got)
	}
	if got := KeywordScore(auditExperienceText, aa1); got < 0 || got > 1 {
		t.Errorf("score %v out of [0,1]", got)
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"controls", "control"},
		{"control", "control"},
		{"tested", "test"},
		{"testing", "test"},
		{"deficiencies", "deficiency"},
		{"deficiency", "deficiency"},
		{"papers", "paper"},
		{"fieldwork", "fieldwork"},
	}
	for _, tt := range tests {
		if got := stem(tt.in); got != tt.want {
			t.Errorf("stem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRelevanceScorerBlends(t *testing.T) {
	log := newTestLogger(t)
	aa1 := seedCompetency(t, "AA1")
	policy := testPolicy().Scoring

	scorer := NewRelevanceScorer(log, &stubSemanticScorer{score: 0.9}, policy)
	result, err := scorer.Score(context.Background(), auditExperienceText, aa1)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if result.Degraded {
		t.Error("blend with healthy semantic scorer reported degraded")
	}

	keyword := KeywordScore(auditExperienceText, aa1)
	want := policy.AIWeight*0.9 + (1-policy.AIWeight)*keyword
	if diff := result.Score - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("blended score %v, want %v", result.Score, want)
	}
}

func TestRelevanceScorerFallsBackOnProviderFailure(t *testing.T) {
	log := newTestLogger(t)
	aa1 := seedCompetency(t, "AA1")
	policy := testPolicy().Scoring

	scorer := NewRelevanceScorer(log, &stubSemanticScorer{err: errors.New("provider down")}, policy)
	result, err := scorer.Score(context.Background(), auditExperienceText, aa1)
	if err != nil {
		t.Fatalf("fallback should not error: %v", err)
	}
	if !result.Degraded {
		t.Error("fallback result not marked degraded")
	}
	if want := KeywordScore(auditExperienceText, aa1); result.Score != want {
		t.Errorf("fallback score %v, want keyword score %v", result.Score, want)
	}
}

func TestSuggestedLevel(t *testing.T) {
	log := newTestLogger(t)
	scorer := NewRelevanceScorer(log, nil, testPolicy().Scoring)

	tests := []struct {
		score float64
		want  int
	}{
		{0.95, 2},
		{0.9, 2},
		{0.89, 1},
		{0.7, 1},
		{0.69, 0},
		{0.0, 0},
	}
	for _, tt := range tests {
		if got := scorer.SuggestedLevel(tt.score); got != tt.want {
			t.Errorf("SuggestedLevel(%v) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestExtractEvidence(t *testing.T) {
	aa1 := seedCompetency(t, "AA1")

	quotes := ExtractEvidence(auditExperienceText, aa1, 2)
	if len(quotes) == 0 {
		t.Fatal("no evidence extracted from matching text")
	}
	if len(quotes) > 2 {
		t.Fatalf("evidence exceeds cap: %d quotes", len(quotes))
	}
	// Quotes keep document order.
	last := -1
	for _, q := range quotes {
		idx := indexOf(auditExperienceText, q)
		if idx < 0 {
			t.Errorf("evidence %q is not verbatim from the text", q)
			continue
		}
		if idx < last {
			t.Errorf("evidence out of document order: %q", q)
		}
		last = idx
	}

	if got := ExtractEvidence("nothing relevant here at all", aa1, 3); got != nil {
		t.Errorf("unrelated text produced evidence: %v", got)
	}
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
