package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MappingMethodAIAssisted      = "ai_assisted"
	MappingMethodUserEdited      = "user_edited"
	MappingMethodMentorValidated = "mentor_validated"
)

// CompetencyMapping links one experience to one competency for one user.
// At most one row exists per (user, experience, competency); re-mapping
// overwrites. Rows are never hard-deleted by user action.
type CompetencyMapping struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID   `gorm:"type:uuid;not null;index:idx_mapping_tuple,unique,priority:1" json:"user_id"`
	ExperienceID uuid.UUID   `gorm:"type:uuid;not null;index:idx_mapping_tuple,unique,priority:2" json:"experience_id"`
	Experience   *Experience `gorm:"constraint:OnDelete:CASCADE;foreignKey:ExperienceID;references:ID" json:"experience,omitempty"`
	CompetencyID uuid.UUID   `gorm:"type:uuid;not null;index:idx_mapping_tuple,unique,priority:3" json:"competency_id"`
	Competency   *Competency `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompetencyID;references:ID" json:"competency,omitempty"`

	// 0.0-1.0, higher is a stronger match.
	RelevanceScore float64 `gorm:"column:relevance_score;not null" json:"relevance_score"`
	// Ordered list of verbatim quotes from the experience text.
	Evidence datatypes.JSON `gorm:"type:jsonb;column:evidence" json:"evidence"`
	// ai_assisted|user_edited|mentor_validated
	MappingMethod  string `gorm:"column:mapping_method;not null" json:"mapping_method"`
	IsValidated    bool   `gorm:"column:is_validated;not null;default:false" json:"is_validated"`
	SuggestedLevel int    `gorm:"column:suggested_level;not null;default:0" json:"suggested_level"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CompetencyMapping) TableName() string { return "competency_mapping" }

func (m *CompetencyMapping) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
