package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/trekbot/internal/middleware"
	"github.com/example/trekbot/internal/models"
	"github.com/example/trekbot/internal/utils"
)

// NotificationHandler manages notification preference and listing endpoints.
type NotificationHandler struct {
	db *gorm.DB
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// GetPreference reads the caller's receive_notifications flag.
func (h *NotificationHandler) GetPreference(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", principal.UserID).Error; err != nil {
		return err
	}

	return success(c, fiber.StatusOK, "notification preference", fiber.Map{
		"receive_notifications": user.ReceiveNotifications,
	})
}

type setPreferenceRequest struct {
	ReceiveNotifications *bool `json:"receive_notifications"`
}

// SetPreference writes the caller's receive_notifications flag.
func (h *NotificationHandler) SetPreference(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req setPreferenceRequest
	if err := c.BodyParser(&req); err != nil || req.ReceiveNotifications == nil {
		return &ValidationError{Message: "receive_notifications is required"}
	}

	if err := h.db.Model(&models.User{}).
		Where("id = ?", principal.UserID).
		Update("receive_notifications", *req.ReceiveNotifications).Error; err != nil {
		return err
	}

	return success(c, fiber.StatusOK, "notification preference updated", fiber.Map{
		"receive_notifications": *req.ReceiveNotifications,
	})
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Notification{}).Where("user_id = ?", principal.UserID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var notifications []models.Notification
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&notifications).Error; err != nil {
		return err
	}

	return success(c, fiber.StatusOK, "notifications", fiber.Map{
		"items": notifications,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// CountUnread returns how many of the caller's notifications are unread.
func (h *NotificationHandler) CountUnread(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var count int64
	if err := h.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", principal.UserID, false).
		Count(&count).Error; err != nil {
		return err
	}

	return success(c, fiber.StatusOK, "unread notifications", fiber.Map{
		"unread": count,
	})
}
