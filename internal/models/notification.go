package models

import "github.com/google/uuid"

// Notification is an in-app message for a user, created by side effects
// such as the registration welcome message.
type Notification struct {
	BaseModel
	UserID  uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Message string    `json:"message"`
	IsRead  bool      `gorm:"default:false" json:"is_read"`
}
