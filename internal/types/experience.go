package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Experience is a professional experience record owned by the profile
// subsystem. The mapping/PERT side treats it as read-only input.
type Experience struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description;not null" json:"description"`
	// work|volunteer|education
	ExperienceType string         `gorm:"column:experience_type;not null;default:'work'" json:"experience_type"`
	StartDate      time.Time      `gorm:"column:start_date;not null;index" json:"start_date"`
	EndDate        *time.Time     `gorm:"column:end_date;index" json:"end_date,omitempty"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Experience) TableName() string { return "experience" }

func (e *Experience) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
