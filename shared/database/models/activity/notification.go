package activity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationLevel represents the severity level of a notification
type NotificationLevel string

const (
	NotificationLevelSuccess NotificationLevel = "success"
	NotificationLevelWarning NotificationLevel = "warning"
	NotificationLevelInfo    NotificationLevel = "info"
)

// Notification is a realtime notification row, pushed to its user over
// WebSocket when they are connected.
type Notification struct {
	ID         uuid.UUID         `json:"id" gorm:"type:uuid;primary_key"`
	UserID     *uuid.UUID        `json:"user_id,omitempty" gorm:"type:uuid;index"`
	Type       string            `json:"type" gorm:"type:varchar(50);not null"`
	Level      NotificationLevel `json:"level" gorm:"type:varchar(20);not null;default:'info'"`
	Title      string            `json:"title" gorm:"type:varchar(200);not null"`
	Message    string            `json:"message" gorm:"type:text;not null"`
	EntityKind string            `json:"entity_kind,omitempty" gorm:"type:varchar(50)"`
	EntityID   *uuid.UUID        `json:"entity_id,omitempty" gorm:"type:uuid"`
	IsRead     bool              `json:"is_read" gorm:"default:false;index"`
	CreatedAt  time.Time         `json:"created_at" gorm:"autoCreateTime;index"`
	ReadAt     *time.Time        `json:"read_at,omitempty"`
}

// TableName returns the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// WebSocketMessage represents a WebSocket message format
type WebSocketMessage struct {
	Type       string            `json:"type"`
	Level      NotificationLevel `json:"level"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	Timestamp  time.Time         `json:"timestamp"`
	EntityKind string            `json:"entity_kind,omitempty"`
	EntityID   *uuid.UUID        `json:"entity_id,omitempty"`
	UserID     *uuid.UUID        `json:"user_id,omitempty"`
}
