package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CompetencyCategoryTechnical = "Technical"
	CompetencyCategoryEnabling  = "Enabling"

	EVRRelevanceHigh   = "HIGH"
	EVRRelevanceMedium = "MEDIUM"
	EVRRelevanceLow    = "LOW"
)

// Competency is a row of the CPA competency catalog. Reference data: seeded
// by the administrative reseed, never mutated by user action.
type Competency struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	// Business key, e.g. "FR1".
	Code     string `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Category string `gorm:"column:category;not null;index" json:"category"` // Technical|Enabling
	AreaCode string `gorm:"column:area_code;not null;index" json:"area_code"`
	AreaName string `gorm:"column:area_name;not null" json:"area_name"`
	SubCode  string `gorm:"column:sub_code;not null" json:"sub_code"`
	SubName  string `gorm:"column:sub_name;not null" json:"sub_name"`

	Description  string `gorm:"column:description;not null" json:"description"`
	EVRRelevance string `gorm:"column:evr_relevance;not null;index" json:"evr_relevance"` // HIGH|MEDIUM|LOW

	Level1Criteria   string `gorm:"column:level1_criteria;not null" json:"level1_criteria"`
	Level2Criteria   string `gorm:"column:level2_criteria;not null" json:"level2_criteria"`
	GuidingQuestions string `gorm:"column:guiding_questions;not null" json:"guiding_questions"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Competency) TableName() string { return "competency" }

func (c *Competency) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// DefaultTargetLevel is the EVR-implied requirement used when the caller
// does not supply a target: 2 for HIGH-relevance technical competencies,
// 1 otherwise.
func (c Competency) DefaultTargetLevel() int {
	if c.Category == CompetencyCategoryTechnical && c.EVRRelevance == EVRRelevanceHigh {
		return 2
	}
	return 1
}
