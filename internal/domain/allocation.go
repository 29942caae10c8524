package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Allocation links a user to the capacity block they reserved. It carries no kW of its own.
type Allocation struct {
	AllocationID    uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	CapacityBlockID uuid.UUID `gorm:"column:capacity_block_id;type:uuid;not null;uniqueIndex" json:"capacity_block_id"`
	CreatedAt       time.Time `gorm:"column:createdAt" json:"createdAt"`
}

func (Allocation) TableName() string {
	return "Allocations"
}

func (a *Allocation) BeforeCreate(tx *gorm.DB) error {
	if a.AllocationID == uuid.Nil {
		a.AllocationID = uuid.New()
	}
	return nil
}
