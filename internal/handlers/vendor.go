package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/trekbot/internal/middleware"
	"github.com/example/trekbot/internal/models"
)

// VendorHandler serves vendor-scoped endpoints.
type VendorHandler struct {
	db *gorm.DB
}

// NewVendorHandler constructs VendorHandler.
func NewVendorHandler(db *gorm.DB) *VendorHandler {
	return &VendorHandler{db: db}
}

// Dashboard returns aggregate counts for the caller's vendor.
func (h *VendorHandler) Dashboard(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	vendor, err := vendorFor(h.db, principal.UserID)
	if err != nil {
		return err
	}

	var totalNotifications int64
	if err := h.db.Model(&models.Notification{}).
		Where("user_id = ?", principal.UserID).
		Count(&totalNotifications).Error; err != nil {
		return err
	}

	var unreadNotifications int64
	if err := h.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", principal.UserID, false).
		Count(&unreadNotifications).Error; err != nil {
		return err
	}

	var totalRewards int64
	if err := h.db.Model(&models.Reward{}).
		Where("vendor_id = ?", vendor.ID).
		Count(&totalRewards).Error; err != nil {
		return err
	}

	var totalCheckIns int64
	if err := h.db.Model(&models.CheckIn{}).
		Where("vendor_id = ?", vendor.ID).
		Count(&totalCheckIns).Error; err != nil {
		return err
	}

	var totalRedemptions int64
	if err := h.db.Model(&models.RewardRedemption{}).
		Where("reward_id IN (?)", h.db.Model(&models.Reward{}).Select("id").Where("vendor_id = ?", vendor.ID)).
		Count(&totalRedemptions).Error; err != nil {
		return err
	}

	return success(c, fiber.StatusOK, "vendor dashboard", fiber.Map{
		"vendor": fiber.Map{
			"id":   vendor.ID,
			"name": vendor.Name,
			"lat":  vendor.Lat,
			"lng":  vendor.Lng,
		},
		"notifications":        totalNotifications,
		"unread_notifications": unreadNotifications,
		"rewards":              totalRewards,
		"check_ins":            totalCheckIns,
		"redemptions":          totalRedemptions,
	})
}
