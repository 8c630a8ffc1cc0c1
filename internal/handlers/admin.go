package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/trekbot/internal/models"
)

// AdminHandler serves admin-only aggregate endpoints.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

const dashboardPreviewLimit = 10

// DashboardOverview returns global platform counts plus capped previews of
// users and vendors.
func (h *AdminHandler) DashboardOverview(c *fiber.Ctx) error {
	var totalUsers int64
	if err := h.db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return err
	}

	var totalVendors int64
	if err := h.db.Model(&models.Vendor{}).Count(&totalVendors).Error; err != nil {
		return err
	}

	var activeRewards int64
	if err := h.db.Model(&models.Reward{}).
		Where("valid_until >= ?", time.Now()).
		Count(&activeRewards).Error; err != nil {
		return err
	}

	var totalRedemptions int64
	if err := h.db.Model(&models.RewardRedemption{}).Count(&totalRedemptions).Error; err != nil {
		return err
	}

	var users []models.User
	if err := h.db.Select("id, username, email, role, created_at, updated_at").
		Order("created_at desc").
		Limit(dashboardPreviewLimit).
		Find(&users).Error; err != nil {
		return err
	}

	var vendors []models.Vendor
	if err := h.db.Order("created_at desc").
		Limit(dashboardPreviewLimit).
		Find(&vendors).Error; err != nil {
		return err
	}

	return success(c, fiber.StatusOK, "dashboard overview", fiber.Map{
		"stats": fiber.Map{
			"total_users":        totalUsers,
			"total_vendors":      totalVendors,
			"active_rewards":     activeRewards,
			"reward_redemptions": totalRedemptions,
		},
		"users":   users,
		"vendors": vendors,
	})
}
