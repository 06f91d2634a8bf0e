package services

import (
	"context"
	"strings"
	"unicode"

	"github.com/pathfinder-hq/pathfinder-backend/internal/config"
	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

// SemanticScorer is the pluggable AI-backed scoring strategy. Test code and
// alternative providers swap it without touching the mapper's control flow.
type SemanticScorer interface {
	ScoreRelevance(ctx context.Context, experienceText string, competency *types.Competency) (float64, error)
}

type ScoreResult struct {
	Score float64
	// Degraded is set when the semantic scorer failed and only the keyword
	// signal contributed.
	Degraded bool
}

// RelevanceScorer blends the lexical keyword signal with the semantic score
// when one is available; the semantic score dominates per policy weight.
type RelevanceScorer struct {
	log      *logger.Logger
	semantic SemanticScorer
	policy   config.ScoringPolicy
}

func NewRelevanceScorer(log *logger.Logger, semantic SemanticScorer, policy config.ScoringPolicy) *RelevanceScorer {
	return &RelevanceScorer{
		log:      log.With("service", "RelevanceScorer"),
		semantic: semantic,
		policy:   policy,
	}
}

func (rs *RelevanceScorer) Score(ctx context.Context, experienceText string, competency *types.Competency) (ScoreResult, error) {
	keywordScore := KeywordScore(experienceText, competency)

	if rs.semantic == nil {
		return ScoreResult{Score: keywordScore, Degraded: true}, nil
	}

	aiScore, err := rs.semantic.ScoreRelevance(ctx, experienceText, competency)
	if err != nil {
		// Keyword-only fallback: a degraded mapping beats a failed request.
		rs.log.Warn("Semantic scoring failed, falling back to keyword score",
			"competency", competency.Code,
			"error", err.Error(),
		)
		return ScoreResult{Score: keywordScore, Degraded: true}, nil
	}

	blended := rs.policy.AIWeight*clampScore(aiScore) + (1-rs.policy.AIWeight)*keywordScore
	return ScoreResult{Score: clampScore(blended)}, nil
}

// SuggestedLevel maps a blended score to the proficiency level the mapping
// suggests, per the policy threshold bands.
func (rs *RelevanceScorer) SuggestedLevel(score float64) int {
	switch {
	case score >= rs.policy.Level2Threshold:
		return 2
	case score >= rs.policy.Level1Threshold:
		return 1
	default:
		return 0
	}
}

// KeywordScore measures lexical overlap between the experience text and the
// competency's guiding questions and level criteria. It saturates with the
// number of distinct matched keywords, so more matches never score lower.
func KeywordScore(experienceText string, competency *types.Competency) float64 {
	keywords := CompetencyKeywords(competency)
	if len(keywords) == 0 {
		return 0
	}

	seen := map[string]bool{}
	hits := 0
	for _, token := range tokenize(experienceText) {
		if seen[token] {
			continue
		}
		seen[token] = true
		if keywords[token] {
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	return float64(hits) / (float64(hits) + 2.0)
}

// CompetencyKeywords extracts the normalized keyword set from a competency's
// guiding questions and criteria text.
func CompetencyKeywords(competency *types.Competency) map[string]bool {
	source := competency.GuidingQuestions + " " + competency.Level1Criteria + " " + competency.Level2Criteria
	keywords := map[string]bool{}
	for _, token := range tokenize(source) {
		keywords[token] = true
	}
	return keywords
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var stopwords = map[string]bool{
	"about": true, "after": true, "also": true, "been": true, "before": true,
	"being": true, "could": true, "did": true, "does": true, "doing": true,
	"during": true, "each": true, "from": true, "have": true, "having": true,
	"how": true, "into": true, "more": true, "most": true, "other": true,
	"over": true, "should": true, "some": true, "such": true, "than": true,
	"that": true, "their": true, "them": true, "then": true, "there": true,
	"these": true, "they": true, "this": true, "those": true, "under": true,
	"very": true, "were": true, "what": true, "when": true, "where": true,
	"which": true, "while": true, "will": true, "with": true, "would": true,
	"your": true, "you": true, "the": true, "and": true, "for": true,
	"are": true, "was": true, "can": true, "has": true, "had": true,
	"any": true, "all": true, "its": true, "who": true, "whom": true,
	"describe": true, "explain": true, "example": true, "examples": true,
}

// tokenize lowercases, splits on non-letter/digit runes, drops stopwords and
// short tokens, and applies a light suffix stem so that close inflections
// ("control"/"controls", "test"/"tested"/"testing") line up.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 4 || stopwords[f] {
			continue
		}
		out = append(out, stem(f))
	}
	return out
}

func stem(token string) string {
	if strings.HasSuffix(token, "ies") && len(token) > 4 {
		return token[:len(token)-3] + "y"
	}
	for _, suffix := range []string{"ing", "ed", "es", "s"} {
		if strings.HasSuffix(token, suffix) && len(token)-len(suffix) >= 4 {
			return token[:len(token)-len(suffix)]
		}
	}
	return token
}
