package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pathfinder-hq/pathfinder-backend/internal/config"
	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

// newTestDB opens a per-test in-memory sqlite database with the full schema.
// A single pooled connection keeps transactions serialized, which is what the
// versioning race tests rely on.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Experience{},
		&types.Competency{},
		&types.CompetencyMapping{},
		&types.ProficiencyAssessment{},
		&types.PertResponse{},
		&types.PertResponseHistory{},
		&types.ComplianceCheck{},
		&types.AICallLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func testPolicy() config.Policy {
	return config.DefaultPolicy()
}

// stubSemanticScorer returns a fixed score, or fails every call.
type stubSemanticScorer struct {
	score float64
	err   error
}

func (s *stubSemanticScorer) ScoreRelevance(ctx context.Context, experienceText string, competency *types.Competency) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.score, nil
}

// stubAIClient replays canned completions in order, repeating the last one.
type stubAIClient struct {
	completions []string
	err         error
	calls       int
}

func (s *stubAIClient) Chat(ctx context.Context, messages []AIMessage, opts *AIOptions) (*AICompletion, error) {
	if s.err != nil {
		return nil, s.err
	}
	idx := s.calls
	if idx >= len(s.completions) {
		idx = len(s.completions) - 1
	}
	s.calls++
	return &AICompletion{Content: s.completions[idx]}, nil
}

func (s *stubAIClient) Model() string { return "stub-model" }
