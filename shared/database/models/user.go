package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User statuses
const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
)

type User struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Email       string     `json:"email" gorm:"uniqueIndex;not null"`
	Password    string     `json:"-" gorm:"not null"`
	FirstName   string     `json:"first_name" gorm:"size:100"`
	LastName    string     `json:"last_name" gorm:"size:100"`
	Phone       string     `json:"phone" gorm:"size:20"`
	Status      string     `json:"status" gorm:"default:'ACTIVE'"`
	Role        string     `json:"role" gorm:"size:50;default:'sales'"`
	SalesUnitID *uuid.UUID `json:"sales_unit_id" gorm:"type:uuid"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	SalesUnit *SalesUnit `json:"sales_unit,omitempty" gorm:"foreignKey:SalesUnitID"`
}

// BeforeCreate assigns the primary key so the model works on any dialect
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsActive reports whether the user may receive ownership
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
