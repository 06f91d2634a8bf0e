package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/repos"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

type AICallRecord struct {
	UserID    uuid.UUID
	ContextID uuid.UUID
	CallType  string
	Model     string
	Prompt    string
	Response  string
	Err       error
	Started   time.Time
}

// AICallAuditor persists one ai_call_log row per provider call. Logging is
// best-effort: a failed audit write never fails the caller's request.
type AICallAuditor struct {
	log  *logger.Logger
	repo repos.AICallLogRepo
}

func NewAICallAuditor(log *logger.Logger, repo repos.AICallLogRepo) *AICallAuditor {
	return &AICallAuditor{
		log:  log.With("service", "AICallAuditor"),
		repo: repo,
	}
}

func (a *AICallAuditor) Record(ctx context.Context, rec AICallRecord) {
	if a == nil || a.repo == nil {
		return
	}

	entry := &types.AICallLog{
		CallType:  rec.CallType,
		Model:     rec.Model,
		Prompt:    rec.Prompt,
		Response:  rec.Response,
		Success:   rec.Err == nil,
		LatencyMS: time.Since(rec.Started).Milliseconds(),
	}
	if rec.Err != nil {
		entry.Error = rec.Err.Error()
	}
	if rec.UserID != uuid.Nil {
		uid := rec.UserID
		entry.UserID = &uid
	}
	if rec.ContextID != uuid.Nil {
		cid := rec.ContextID
		entry.ContextID = &cid
	}

	if _, err := a.repo.Create(ctx, nil, entry); err != nil {
		a.log.Warn("Failed to write AI call log", "call_type", rec.CallType, "error", err)
	}
}
