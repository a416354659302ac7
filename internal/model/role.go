package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Persona is the content voice a role writes in.
type Persona struct {
	Industry        string   `json:"industry" gorm:"size:255"`
	TargetAudience  string   `json:"targetAudience" gorm:"size:255"`
	ToneOfVoice     string   `json:"toneOfVoice" gorm:"size:100"`
	ContentTypes    []string `json:"contentTypes" gorm:"type:text;serializer:json"`
	Keywords        []string `json:"keywords" gorm:"type:text;serializer:json"`
	Hashtags        []string `json:"hashtags" gorm:"type:text;serializer:json"`
	BrandingGoal    string   `json:"brandingGoal" gorm:"size:255"`
	ExperienceLevel string   `json:"experienceLevel" gorm:"size:100"`
}

// Role is a named persona owned by one user.
type Role struct {
	ID          uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID      uuid.UUID `json:"userId" gorm:"type:char(36);not null;index"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Persona     Persona   `json:"persona" gorm:"embedded;embeddedPrefix:persona_"`
	IsDefault   bool      `json:"isDefault" gorm:"not null"`
	IsActive    bool      `json:"isActive" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	User *User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
