package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/trekbot/internal/middleware"
	"github.com/example/trekbot/internal/models"
)

// ProfileHandler serves the authenticated user's own record.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns the caller's public fields.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", principal.UserID).Error; err != nil {
		return err
	}

	return success(c, fiber.StatusOK, "profile", fiber.Map{
		"id":                    user.ID,
		"username":              user.Username,
		"email":                 user.Email,
		"role":                  user.Role,
		"receive_notifications": user.ReceiveNotifications,
		"is_active":             user.IsActive,
		"created_at":            user.CreatedAt,
	})
}
