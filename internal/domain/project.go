package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project lifecycle states.
const (
	ProjectDraft       = "DRAFT"
	ProjectActive      = "ACTIVE"
	ProjectMaintenance = "MAINTENANCE"
	ProjectRetired     = "RETIRED"
)

// ProjectStatuses lists every valid lifecycle status.
var ProjectStatuses = []string{ProjectDraft, ProjectActive, ProjectMaintenance, ProjectRetired}

// IsValidProjectStatus reports whether s is one of ProjectStatuses.
func IsValidProjectStatus(s string) bool {
	for _, st := range ProjectStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Project is a solar installation owned by an SPV whose capacity is sold in blocks.
// DeletedAt is set by the admin soft delete; default-scoped queries never return those rows.
type Project struct {
	ProjectID   uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SpvID       string         `gorm:"column:spv_id;not null;uniqueIndex" json:"spv_id"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	TotalKw     float64        `gorm:"column:total_kw;type:decimal(12,2);not null" json:"total_kw"`
	RatePerKwh  float64        `gorm:"column:rate_per_kwh;type:decimal(10,2);not null" json:"rate_per_kwh"`
	Location    string         `gorm:"column:location;not null" json:"location"`
	State       string         `gorm:"column:state;not null;index" json:"state"`
	Status      string         `gorm:"column:status;type:varchar(20);not null;default:'DRAFT'" json:"status"`
	Description *string        `gorm:"column:description" json:"description"`
	CreatedAt   time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at;index" json:"deleted_at"`
}

func (Project) TableName() string {
	return "Projects"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ProjectID == uuid.Nil {
		p.ProjectID = uuid.New()
	}
	return nil
}
