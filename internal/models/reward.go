package models

import (
	"time"

	"github.com/google/uuid"
)

// Reward is a redeemable offer scoped to its owning vendor.
type Reward struct {
	BaseModel
	VendorID             uuid.UUID `gorm:"type:uuid;index" json:"vendor_id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	VisitsRequired       int       `gorm:"default:1" json:"visits_required"`
	MaxRedemptionsPerDay int       `gorm:"default:1" json:"max_redemptions_per_day"`
	ValidUntil           time.Time `json:"valid_until"`

	Redemptions []RewardRedemption `gorm:"foreignKey:RewardID;constraint:OnDelete:CASCADE" json:"redemptions,omitempty"`
}

// Expired reports whether the reward can no longer be redeemed.
func (r *Reward) Expired(now time.Time) bool {
	return r.ValidUntil.Before(now)
}

// RewardRedemption records a traveler consuming a reward.
type RewardRedemption struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	RewardID    uuid.UUID `gorm:"type:uuid;index" json:"reward_id"`
	RedeemedAt  time.Time `gorm:"index" json:"redeemed_at"`
	QRValidated bool      `gorm:"default:false" json:"qr_validated"`
}
