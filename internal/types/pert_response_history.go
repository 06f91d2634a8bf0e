package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PertResponseHistory mirrors archived response versions for audit. Rows are
// written when a version is superseded and never updated afterwards.
type PertResponseHistory struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	// The pert_response row this snapshot was taken from.
	ResponseID   uuid.UUID `gorm:"type:uuid;not null;index" json:"response_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_pert_history_pair,priority:1" json:"user_id"`
	CompetencyID uuid.UUID `gorm:"type:uuid;not null;index:idx_pert_history_pair,priority:2" json:"competency_id"`
	ExperienceID uuid.UUID `gorm:"type:uuid;not null" json:"experience_id"`
	Version      int       `gorm:"column:version;not null" json:"version"`

	ProficiencyLevel int    `gorm:"column:proficiency_level;not null" json:"proficiency_level"`
	Situation        string `gorm:"column:situation;not null" json:"situation"`
	Task             string `gorm:"column:task;not null" json:"task"`
	Action           string `gorm:"column:action;not null" json:"action"`
	Result           string `gorm:"column:result;not null" json:"result"`
	ResponseText     string `gorm:"column:response_text;not null" json:"response_text"`
	CharacterCount   int    `gorm:"column:character_count;not null" json:"character_count"`
	QuantifiedImpact string `gorm:"column:quantified_impact" json:"quantified_impact,omitempty"`
	IsCompliant      bool   `gorm:"column:is_compliant;not null;default:false" json:"is_compliant"`

	ArchivedAt time.Time `gorm:"column:archived_at;not null" json:"archived_at"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (PertResponseHistory) TableName() string { return "pert_response_history" }

func (h *PertResponseHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
