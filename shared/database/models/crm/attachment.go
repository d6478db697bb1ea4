package crm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment is a polymorphic linked file. The payload lives in object
// storage; this row keeps the metadata and the object key.
type Attachment struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	EntityKind string    `json:"entity_kind" gorm:"size:50;not null;index:idx_attachments_entity"`
	EntityID   uuid.UUID `json:"entity_id" gorm:"type:uuid;not null;index:idx_attachments_entity"`

	// File information
	FileName     string `json:"file_name" gorm:"not null"`
	OriginalName string `json:"original_name" gorm:"not null"`
	FileSize     int64  `json:"file_size" gorm:"not null"`
	MimeType     string `json:"mime_type" gorm:"not null"`
	Checksum     string `json:"checksum"`

	// Storage
	BucketName string `json:"bucket_name" gorm:"not null"`
	ObjectKey  string `json:"object_key" gorm:"not null;unique"`

	OwnerID   uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
