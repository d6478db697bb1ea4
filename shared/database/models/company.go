package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company flags bitmask
const (
	CompanyFlagSystem = 1 << 0
)

// Company statuses
const (
	CompanyStatusActive   = "ACTIVE"
	CompanyStatusInactive = "INACTIVE"
)

type Company struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string     `json:"name" gorm:"size:200;not null"`
	VAT         string     `json:"vat" gorm:"size:60"`
	Email       string     `json:"email" gorm:"size:200"`
	Phone       string     `json:"phone" gorm:"size:20"`
	Website     string     `json:"website" gorm:"size:200"`
	Category    string     `json:"category" gorm:"size:100"`
	Status      string     `json:"status" gorm:"default:'ACTIVE'"`
	Flags       int        `json:"flags" gorm:"default:0"`
	OwnerID     uuid.UUID  `json:"owner_id" gorm:"type:uuid;not null;index"`
	SalesUnitID *uuid.UUID `json:"sales_unit_id" gorm:"type:uuid"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Owner     *User      `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	SalesUnit *SalesUnit `json:"sales_unit,omitempty" gorm:"foreignKey:SalesUnitID"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsSystem reports whether the company is system-defined and therefore
// protected from ownership changes regardless of caller permissions.
func (c *Company) IsSystem() bool {
	return c.Flags&CompanyFlagSystem != 0
}
