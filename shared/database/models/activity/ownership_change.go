package activity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnershipChange is the durable audit record of a completed transfer. One
// row per OwnershipChanged event received from crm-service.
type OwnershipChange struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	EntityKind string     `json:"entity_kind" gorm:"size:50;not null;index:idx_ownership_changes_entity"`
	EntityID   uuid.UUID  `json:"entity_id" gorm:"type:uuid;not null;index:idx_ownership_changes_entity"`
	OldOwnerID uuid.UUID  `json:"old_owner_id" gorm:"type:uuid;not null;index"`
	NewOwnerID uuid.UUID  `json:"new_owner_id" gorm:"type:uuid;not null;index"`
	Cascaded   bool       `json:"cascaded" gorm:"not null"`
	Counts     string     `json:"counts" gorm:"type:text"` // per-relation mutation counts as JSON
	ActorID    *uuid.UUID `json:"actor_id,omitempty" gorm:"type:uuid"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName returns the table name for OwnershipChange
func (OwnershipChange) TableName() string {
	return "ownership_changes"
}

func (c *OwnershipChange) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
