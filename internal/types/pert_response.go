package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PertResponse is the versioned STAR artifact. Exactly one row per
// (user, competency) carries is_current=true; the unique index on
// (user, competency, version) is the optimistic-concurrency guard for the
// archive-then-insert protocol.
type PertResponse struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID   `gorm:"type:uuid;not null;index:idx_pert_version,unique,priority:1" json:"user_id"`
	CompetencyID uuid.UUID   `gorm:"type:uuid;not null;index:idx_pert_version,unique,priority:2" json:"competency_id"`
	Version      int         `gorm:"column:version;not null;index:idx_pert_version,unique,priority:3" json:"version"`
	ExperienceID uuid.UUID   `gorm:"type:uuid;not null;index" json:"experience_id"`
	Experience   *Experience `gorm:"constraint:OnDelete:CASCADE;foreignKey:ExperienceID;references:ID" json:"experience,omitempty"`
	Competency   *Competency `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompetencyID;references:ID" json:"competency,omitempty"`

	ProficiencyLevel int `gorm:"column:proficiency_level;not null" json:"proficiency_level"`

	Situation string `gorm:"column:situation;not null" json:"situation"`
	Task      string `gorm:"column:task;not null" json:"task"`
	Action    string `gorm:"column:action;not null" json:"action"`
	Result    string `gorm:"column:result;not null" json:"result"`
	// Rendered concatenation of the four sections. Kept in sync with them;
	// exports rely on the exact header format.
	ResponseText     string `gorm:"column:response_text;not null" json:"response_text"`
	CharacterCount   int    `gorm:"column:character_count;not null" json:"character_count"`
	QuantifiedImpact string `gorm:"column:quantified_impact" json:"quantified_impact,omitempty"`
	IsCompliant      bool   `gorm:"column:is_compliant;not null;default:false" json:"is_compliant"`

	IsCurrent bool `gorm:"column:is_current;not null;default:false;index" json:"is_current"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PertResponse) TableName() string { return "pert_response" }

func (r *PertResponse) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
