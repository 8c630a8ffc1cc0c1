package models

import "github.com/google/uuid"

// Vendor is a merchant location owned by a vendor-role user. It is created
// exactly once, inside the registration transaction, never through the API.
type Vendor struct {
	BaseModel
	Name    string    `json:"name"`
	OwnerID uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"owner_id"`
	Lat     float64   `json:"lat"`
	Lng     float64   `json:"lng"`

	Rewards  []Reward  `gorm:"constraint:OnDelete:CASCADE" json:"rewards,omitempty"`
	CheckIns []CheckIn `gorm:"constraint:OnDelete:CASCADE" json:"check_ins,omitempty"`
}
