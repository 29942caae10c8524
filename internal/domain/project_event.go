package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project event types, written in the same transaction as the change they describe.
const (
	EventProjectCreated = "CREATED"
	EventProjectUpdated = "UPDATED"
	EventStatusChanged  = "STATUS_CHANGED"
	EventBlockAdded     = "BLOCK_ADDED"
	EventBlockAllocated = "BLOCK_ALLOCATED"
	EventProjectDeleted = "DELETED"
)

type ProjectEvent struct {
	EventID     uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	ProjectID   uuid.UUID      `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	EventType   string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	EventData   datatypes.JSON `gorm:"column:event_data;type:jsonb;not null" json:"event_data"`
	ActorUserID *uuid.UUID     `gorm:"column:actor_user_id;type:uuid" json:"actor_user_id"`
	CreatedAt   time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (ProjectEvent) TableName() string {
	return "ProjectEvents"
}

func (e *ProjectEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
