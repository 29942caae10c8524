package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Capacity block states.
const (
	BlockAvailable = "AVAILABLE"
	BlockAllocated = "ALLOCATED"
)

// CapacityBlock is a discrete slice of a project's capacity. The sum of block kW is what
// allocated/available figures are computed from, not Project.TotalKw.
type CapacityBlock struct {
	BlockID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	Kw        float64   `gorm:"column:kw;type:decimal(12,2);not null" json:"kw"`
	Status    string    `gorm:"column:status;type:varchar(20);not null;default:'AVAILABLE'" json:"status"`
	CreatedAt time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (CapacityBlock) TableName() string {
	return "CapacityBlocks"
}

func (b *CapacityBlock) BeforeCreate(tx *gorm.DB) error {
	if b.BlockID == uuid.Nil {
		b.BlockID = uuid.New()
	}
	return nil
}
