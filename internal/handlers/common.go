package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/trekbot/internal/models"
)

// lockForUpdate adds a row lock on dialects that support it. SQLite has a
// single writer and no FOR UPDATE syntax, so the clause is skipped there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// vendorFor resolves the Vendor record owned by a vendor-role user.
// A missing record means provisioning never ran; callers surface that as 404.
func vendorFor(db *gorm.DB, ownerID uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := db.Where("owner_id = ?", ownerID).First(&vendor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "vendor profile not found")
		}
		return nil, err
	}
	return &vendor, nil
}

// dayBounds returns the start of t's calendar day and the start of the next.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.Add(24 * time.Hour)
}
