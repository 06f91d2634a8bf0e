package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AICallLog records every AI completion call for audit: who triggered it,
// what was asked, what came back and how long it took.
type AICallLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	ContextID *uuid.UUID `gorm:"type:uuid;index" json:"context_id,omitempty"`
	// relevance_score|pert_generate
	CallType  string    `gorm:"column:call_type;not null;index" json:"call_type"`
	Model     string    `gorm:"column:model;not null" json:"model"`
	Prompt    string    `gorm:"column:prompt" json:"prompt"`
	Response  string    `gorm:"column:response" json:"response"`
	Success   bool      `gorm:"column:success;not null" json:"success"`
	Error     string    `gorm:"column:error" json:"error"`
	LatencyMS int64     `gorm:"column:latency_ms;not null;default:0" json:"latency_ms"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (AICallLog) TableName() string { return "ai_call_log" }

func (l *AICallLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
