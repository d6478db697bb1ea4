package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SalesUnit is an organizational grouping used for ownership and visibility
// scoping, orthogonal to the user hierarchy.
type SalesUnit struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"size:200;not null"`
	Slug      string    `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	IsDefault bool      `json:"is_default" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *SalesUnit) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
