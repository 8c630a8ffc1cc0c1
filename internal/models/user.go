package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles assignable to a User.
const (
	RoleAdmin    = "admin"
	RoleVendor   = "vendor"
	RoleTraveler = "traveler"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleVendor || role == RoleTraveler
}

// User is the root account entity. Deleting a user cascades to its vendor,
// check-ins, redemptions, notifications and OTP rows.
type User struct {
	BaseModel
	Username             string `gorm:"uniqueIndex" json:"username"`
	Email                string `gorm:"uniqueIndex" json:"email"`
	PasswordHash         string `json:"-"`
	Role                 string `gorm:"default:traveler" json:"role"`
	ReceiveNotifications bool   `gorm:"default:true" json:"receive_notifications"`
	IsActive             bool   `gorm:"default:true" json:"is_active"`

	Vendor        *Vendor            `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"vendor,omitempty"`
	CheckIns      []CheckIn          `gorm:"constraint:OnDelete:CASCADE" json:"check_ins,omitempty"`
	Redemptions   []RewardRedemption `gorm:"constraint:OnDelete:CASCADE" json:"redemptions,omitempty"`
	Notifications []Notification     `gorm:"constraint:OnDelete:CASCADE" json:"notifications,omitempty"`
	ResetOTP      *PasswordResetOTP  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// PasswordResetOTP holds the single live reset code for a user. A new reset
// request replaces the row; the code expires OTPLifetime after CreatedAt.
type PasswordResetOTP struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	Code   string    `json:"-"`
}

// OTPLifetime is how long a password-reset code stays valid.
const OTPLifetime = 10 * time.Minute

// Expired reports whether the code's validity window has passed.
func (o *PasswordResetOTP) Expired(now time.Time) bool {
	return now.After(o.CreatedAt.Add(OTPLifetime))
}

// BlacklistedToken records a refresh token JTI that must no longer be
// accepted, either because it was rotated or because the user logged out.
// Rows past ExpiresAt are dead weight and safe to purge.
type BlacklistedToken struct {
	JTI       string    `gorm:"primaryKey" json:"jti"`
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
