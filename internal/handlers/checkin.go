package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/trekbot/internal/middleware"
	"github.com/example/trekbot/internal/models"
	"github.com/example/trekbot/internal/utils"
)

// CheckInHandler manages traveler visits. Listing branches on the caller's
// role: vendors see visits at their location, travelers see their own,
// admins see everything.
type CheckInHandler struct {
	db *gorm.DB
}

// NewCheckInHandler constructs CheckInHandler.
func NewCheckInHandler(db *gorm.DB) *CheckInHandler {
	return &CheckInHandler{db: db}
}

type createCheckInRequest struct {
	VendorID uuid.UUID `json:"vendor_id"`
}

// Create records a visit by the caller at a vendor location. EntryTime is
// stamped server-side; any client-supplied timestamp is ignored.
func (h *CheckInHandler) Create(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createCheckInRequest
	if err := c.BodyParser(&req); err != nil || req.VendorID == uuid.Nil {
		return &ValidationError{Message: "vendor_id is required"}
	}

	var vendor models.Vendor
	if err := h.db.First(&vendor, "id = ?", req.VendorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "vendor not found")
		}
		return err
	}

	checkIn := models.CheckIn{
		UserID:    principal.UserID,
		VendorID:  vendor.ID,
		EntryTime: time.Now(),
	}

	if err := h.db.Create(&checkIn).Error; err != nil {
		return err
	}

	return success(c, fiber.StatusCreated, "checked in", checkIn)
}

// List returns the check-ins visible to the caller, newest first.
func (h *CheckInHandler) List(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	scoped, err := h.scope(h.db.Model(&models.CheckIn{}), principal)
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)

	var total int64
	if err := scoped.Count(&total).Error; err != nil {
		return err
	}

	var checkIns []models.CheckIn
	if err := scoped.Order("entry_time desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&checkIns).Error; err != nil {
		return err
	}

	return success(c, fiber.StatusOK, "check-ins", fiber.Map{
		"items": checkIns,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// Get returns a single check-in if it is within the caller's scope.
func (h *CheckInHandler) Get(c *fiber.Ctx) error {
	checkIn, err := h.scopedCheckIn(c)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "check-in", checkIn)
}

// Close stamps the exit time exactly once. The conditional update on
// exit_time IS NULL makes a concurrent double-close lose cleanly.
func (h *CheckInHandler) Close(c *fiber.Ctx) error {
	checkIn, err := h.scopedCheckIn(c)
	if err != nil {
		return err
	}

	if checkIn.ExitTime != nil {
		return &ValidationError{Message: "exit already logged"}
	}

	now := time.Now()
	result := h.db.Model(&models.CheckIn{}).
		Where("id = ? AND exit_time IS NULL", checkIn.ID).
		Update("exit_time", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &ValidationError{Message: "exit already logged"}
	}

	checkIn.ExitTime = &now
	return success(c, fiber.StatusOK, "checked out", checkIn)
}

func (h *CheckInHandler) scope(query *gorm.DB, principal middleware.Principal) (*gorm.DB, error) {
	switch principal.Role {
	case models.RoleVendor:
		vendor, err := vendorFor(h.db, principal.UserID)
		if err != nil {
			return nil, err
		}
		return query.Where("vendor_id = ?", vendor.ID), nil
	case models.RoleAdmin:
		return query, nil
	default:
		return query.Where("user_id = ?", principal.UserID), nil
	}
}

func (h *CheckInHandler) scopedCheckIn(c *fiber.Ctx) (*models.CheckIn, error) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	scoped, err := h.scope(h.db.Model(&models.CheckIn{}), principal)
	if err != nil {
		return nil, err
	}

	var checkIn models.CheckIn
	if err := scoped.Where("id = ?", id).First(&checkIn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "check-in not found")
		}
		return nil, err
	}

	return &checkIn, nil
}
