package crm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact is a one-to-many child of a company.
type Contact struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index"`
	FirstName string    `json:"first_name" gorm:"size:100"`
	LastName  string    `json:"last_name" gorm:"size:100"`
	Email     string    `json:"email" gorm:"size:200"`
	Phone     string    `json:"phone" gorm:"size:20"`
	JobTitle  string    `json:"job_title" gorm:"size:100"`
	IsPrimary bool      `json:"is_primary" gorm:"default:false"`
	OwnerID   uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
