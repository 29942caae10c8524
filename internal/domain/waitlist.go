package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Waitlist entry states.
const (
	WaitlistPending   = "PENDING"
	WaitlistContacted = "CONTACTED"
	WaitlistConverted = "CONVERTED"
	WaitlistRejected  = "REJECTED"
)

var WaitlistStatuses = []string{WaitlistPending, WaitlistContacted, WaitlistConverted, WaitlistRejected}

func IsValidWaitlistStatus(s string) bool {
	for _, st := range WaitlistStatuses {
		if st == s {
			return true
		}
	}
	return false
}

type WaitlistEntry struct {
	EntryID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Fullname  string    `gorm:"column:fullname;not null" json:"fullname"`
	Phone     *string   `gorm:"column:phone" json:"phone"`
	State     *string   `gorm:"column:state" json:"state"`
	Status    string    `gorm:"column:status;type:varchar(20);not null;default:'PENDING'" json:"status"`
	Metadata  Metadata  `gorm:"column:metadata;type:json" json:"metadata"`
	CreatedAt time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (WaitlistEntry) TableName() string {
	return "Waitlist"
}

func (w *WaitlistEntry) BeforeCreate(tx *gorm.DB) error {
	if w.EntryID == uuid.Nil {
		w.EntryID = uuid.New()
	}
	return nil
}
