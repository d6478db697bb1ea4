package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Opportunity statuses
const (
	OpportunityStatusOpen = "OPEN"
	OpportunityStatusWon  = "WON"
	OpportunityStatusLost = "LOST"
)

type Opportunity struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name             string     `json:"name" gorm:"size:200;not null"`
	Status           string     `json:"status" gorm:"default:'OPEN';index"`
	Stage            string     `json:"stage" gorm:"size:100"`
	Amount           float64    `json:"amount"`
	Currency         string     `json:"currency" gorm:"size:3;default:'USD'"`
	CloseDate        *time.Time `json:"close_date"`
	PrimaryAccountID *uuid.UUID `json:"primary_account_id" gorm:"type:uuid;index"`
	EndUserID        *uuid.UUID `json:"end_user_id" gorm:"type:uuid;index"`
	OwnerID          uuid.UUID  `json:"owner_id" gorm:"type:uuid;not null;index"`
	SalesUnitID      *uuid.UUID `json:"sales_unit_id" gorm:"type:uuid"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Relations
	PrimaryAccount *Company   `json:"primary_account,omitempty" gorm:"foreignKey:PrimaryAccountID"`
	EndUser        *Company   `json:"end_user,omitempty" gorm:"foreignKey:EndUserID"`
	Owner          *User      `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	SalesUnit      *SalesUnit `json:"sales_unit,omitempty" gorm:"foreignKey:SalesUnitID"`
}

func (o *Opportunity) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// IsLost reports whether the opportunity is closed as lost. Lost opportunities
// keep their owner during cascaded reassignment.
func (o *Opportunity) IsLost() bool {
	return o.Status == OpportunityStatusLost
}
