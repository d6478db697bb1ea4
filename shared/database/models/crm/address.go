package crm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address types
const (
	AddressTypeInvoice  = "INVOICE"
	AddressTypeMachine  = "MACHINE"
	AddressTypeSoftware = "SOFTWARE"
)

// Address is a one-to-many child of a company. It carries its own owner which
// is rewritten when the company's ownership cascades.
type Address struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index"`
	AddressType string    `json:"address_type" gorm:"size:50;default:'INVOICE'"`
	Line1       string    `json:"line_1" gorm:"size:200"`
	Line2       string    `json:"line_2" gorm:"size:200"`
	City        string    `json:"city" gorm:"size:100"`
	PostCode    string    `json:"post_code" gorm:"size:20"`
	Country     string    `json:"country" gorm:"size:100"`
	OwnerID     uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
