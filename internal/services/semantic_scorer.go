package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/requestdata"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

// aiSemanticScorer asks the completion provider for a 0.0-1.0 relevance
// rating. Every call is recorded in the AI call log.
type aiSemanticScorer struct {
	log      *logger.Logger
	aiClient AIClient
	auditor  *AICallAuditor
}

func NewAISemanticScorer(log *logger.Logger, aiClient AIClient, auditor *AICallAuditor) SemanticScorer {
	return &aiSemanticScorer{
		log:      log.With("service", "AISemanticScorer"),
		aiClient: aiClient,
		auditor:  auditor,
	}
}

func (s *aiSemanticScorer) ScoreRelevance(ctx context.Context, experienceText string, competency *types.Competency) (float64, error) {
	userPrompt := buildRelevanceUserPrompt(experienceText, competency)
	started := time.Now()

	completion, err := s.aiClient.Chat(ctx, []AIMessage{
		{Role: "system", Content: relevanceSystemPrompt},
		{Role: "user", Content: userPrompt},
	}, &AIOptions{Temperature: 0, MaxTokens: 8})

	raw := ""
	if completion != nil {
		raw = completion.Content
	}
	s.auditor.Record(ctx, AICallRecord{
		UserID:   requestdata.UserID(ctx),
		CallType: "relevance_score",
		Model:    s.aiClient.Model(),
		Prompt:   userPrompt,
		Response: raw,
		Err:      err,
		Started:  started,
	})
	if err != nil {
		return 0, err
	}

	score, err := parseScore(raw)
	if err != nil {
		return 0, err
	}
	return score, nil
}

func parseScore(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	// Tolerate a trailing period or stray text around the number.
	fields := strings.Fields(trimmed)
	if len(fields) > 0 {
		trimmed = strings.Trim(fields[0], ".,")
	}
	score, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable relevance score %q: %w", raw, err)
	}
	return clampScore(score), nil
}
