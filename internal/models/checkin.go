package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckIn is a timestamped visit linking a traveler to a vendor location.
// EntryTime is always stamped by the server; ExitTime is set at most once.
type CheckIn struct {
	BaseModel
	UserID    uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	VendorID  uuid.UUID  `gorm:"type:uuid;index" json:"vendor_id"`
	EntryTime time.Time  `json:"entry_time"`
	ExitTime  *time.Time `json:"exit_time"`
}
