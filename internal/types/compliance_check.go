package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ComplianceCheckInitial = "initial"
	ComplianceCheckAnnual  = "annual"
	ComplianceCheckFinal   = "final"
)

// ComplianceCheck is a point-in-time snapshot of a user's EVR standing.
// Immutable after creation; every re-check produces a new row.
type ComplianceCheck struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	CheckType string `gorm:"column:check_type;not null" json:"check_type"` // initial|annual|final
	Passed    bool   `gorm:"column:passed;not null" json:"passed"`

	TotalCompetencies int `gorm:"column:total_competencies;not null" json:"total_competencies"`
	CompetenciesMet   int `gorm:"column:competencies_met;not null" json:"competencies_met"`
	Level2Count       int `gorm:"column:level2_count;not null" json:"level2_count"`
	// Competency codes still unmet, JSON array of strings.
	MissingCompetencies datatypes.JSON `gorm:"type:jsonb;column:missing_competencies" json:"missing_competencies"`

	WindowStart *time.Time `gorm:"column:window_start" json:"window_start,omitempty"`
	WindowEnd   *time.Time `gorm:"column:window_end" json:"window_end,omitempty"`
	SpanMet     bool       `gorm:"column:span_met;not null" json:"span_met"`
	RecencyMet  bool       `gorm:"column:recency_met;not null" json:"recency_met"`

	CheckedAt time.Time `gorm:"column:checked_at;not null" json:"checked_at"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expires_at"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ComplianceCheck) TableName() string { return "compliance_check" }

func (c *ComplianceCheck) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
