package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SharingGrant keeps a former owner attached to an entity as an editor after
// an ownership transfer. A grant allows view and update but not delete or
// change-ownership. Grants never expire on their own; a later transfer or an
// explicit revocation removes them.
type SharingGrant struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	EntityKind string    `json:"entity_kind" gorm:"size:50;not null;uniqueIndex:idx_sharing_grant_entity_user"`
	EntityID   uuid.UUID `json:"entity_id" gorm:"type:uuid;not null;uniqueIndex:idx_sharing_grant_entity_user"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_sharing_grant_entity_user"`
	GrantedAt  time.Time `json:"granted_at" gorm:"autoCreateTime"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (g *SharingGrant) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
