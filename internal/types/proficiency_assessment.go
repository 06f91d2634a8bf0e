package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProficiencyAssessment is a derived view over mappings and responses, one
// row per (user, competency). The assessor recomputes it from scratch; it is
// never a source of truth.
type ProficiencyAssessment struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID   `gorm:"type:uuid;not null;index:idx_assessment_pair,unique,priority:1" json:"user_id"`
	CompetencyID uuid.UUID   `gorm:"type:uuid;not null;index:idx_assessment_pair,unique,priority:2" json:"competency_id"`
	Competency   *Competency `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompetencyID;references:ID" json:"competency,omitempty"`

	CurrentLevel     int    `gorm:"column:current_level;not null;default:0" json:"current_level"`
	TargetLevel      int    `gorm:"column:target_level;not null;default:1" json:"target_level"`
	EvidenceCount    int    `gorm:"column:evidence_count;not null;default:0" json:"evidence_count"`
	DevelopmentNotes string `gorm:"column:development_notes" json:"development_notes,omitempty"`

	AssessedAt time.Time      `gorm:"column:assessed_at;not null" json:"assessed_at"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ProficiencyAssessment) TableName() string { return "proficiency_assessment" }

func (a *ProficiencyAssessment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
