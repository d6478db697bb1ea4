package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Asset struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	SerialNumber  string     `json:"serial_number" gorm:"size:100;not null"`
	ProductNumber string     `json:"product_number" gorm:"size:100"`
	ProductName   string     `json:"product_name" gorm:"size:200"`
	Vendor        string     `json:"vendor" gorm:"size:100"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	CompanyID     *uuid.UUID `json:"company_id" gorm:"type:uuid;index"`
	AddressID     *uuid.UUID `json:"address_id" gorm:"type:uuid"`
	OwnerID       uuid.UUID  `json:"owner_id" gorm:"type:uuid;not null;index"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Relations
	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Owner   *User    `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
