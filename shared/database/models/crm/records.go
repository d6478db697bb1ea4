package crm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Note, Task and Appointment attach to any root entity through the
// (entity_kind, entity_id) pair. Each carries its own owner so cascaded
// ownership changes can rewrite it.

type Note struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	EntityKind string    `json:"entity_kind" gorm:"size:50;not null;index:idx_notes_entity"`
	EntityID   uuid.UUID `json:"entity_id" gorm:"type:uuid;not null;index:idx_notes_entity"`
	Text       string    `json:"text" gorm:"type:text;not null"`
	Pinned     bool      `json:"pinned" gorm:"default:false"`
	OwnerID    uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// Task statuses
const (
	TaskStatusOpen = "OPEN"
	TaskStatusDone = "DONE"
)

type Task struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	EntityKind string     `json:"entity_kind" gorm:"size:50;not null;index:idx_tasks_entity"`
	EntityID   uuid.UUID  `json:"entity_id" gorm:"type:uuid;not null;index:idx_tasks_entity"`
	Name       string     `json:"name" gorm:"size:200;not null"`
	Content    string     `json:"content" gorm:"type:text"`
	Status     string     `json:"status" gorm:"default:'OPEN'"`
	Priority   int        `json:"priority" gorm:"default:1"`
	DueDate    *time.Time `json:"due_date"`
	OwnerID    uuid.UUID  `json:"owner_id" gorm:"type:uuid;not null;index"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type Appointment struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	EntityKind string    `json:"entity_kind" gorm:"size:50;not null;index:idx_appointments_entity"`
	EntityID   uuid.UUID `json:"entity_id" gorm:"type:uuid;not null;index:idx_appointments_entity"`
	Subject    string    `json:"subject" gorm:"size:200;not null"`
	Location   string    `json:"location" gorm:"size:200"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	OwnerID    uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
