package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorldwideQuote is a quote attached to an opportunity. Its draft history
// lives in QuoteVersion rows; ActiveVersionID points at the version currently
// being edited.
type WorldwideQuote struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	QuoteNumber     int        `json:"quote_number" gorm:"uniqueIndex"`
	OpportunityID   uuid.UUID  `json:"opportunity_id" gorm:"type:uuid;not null;index"`
	ActiveVersionID *uuid.UUID `json:"active_version_id" gorm:"type:uuid"`
	Submitted       bool       `json:"submitted" gorm:"default:false"`
	OwnerID         uuid.UUID  `json:"owner_id" gorm:"type:uuid;not null;index"`
	SalesUnitID     *uuid.UUID `json:"sales_unit_id" gorm:"type:uuid"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Relations
	Opportunity *Opportunity   `json:"opportunity,omitempty" gorm:"foreignKey:OpportunityID"`
	Owner       *User          `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Versions    []QuoteVersion `json:"versions,omitempty" gorm:"foreignKey:QuoteID"`
}

func (q *WorldwideQuote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.QuoteNumber == 0 {
		var max int
		if err := tx.Model(&WorldwideQuote{}).
			Select("COALESCE(MAX(quote_number), 0)").Scan(&max).Error; err != nil {
			return err
		}
		q.QuoteNumber = max + 1
	}
	return nil
}

// QuoteVersion is one draft of a quote. Sequence numbers are scoped per owner
// and kept contiguous starting at 0 within each owner's versions of a quote.
type QuoteVersion struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	QuoteID      uuid.UUID `json:"quote_id" gorm:"type:uuid;not null;index"`
	OwnerID      uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	Sequence     int       `json:"sequence" gorm:"not null"`
	Completeness int       `json:"completeness" gorm:"default:0"`
	Note         string    `json:"note" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Owner *User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

func (v *QuoteVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
