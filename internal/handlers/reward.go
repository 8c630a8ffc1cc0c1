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

// RewardHandler manages reward CRUD, always scoped to the caller's vendor.
// Rewards of other vendors are invisible: out-of-scope lookups return 404
// rather than 403 so their existence is never leaked.
type RewardHandler struct {
	db *gorm.DB
}

// NewRewardHandler constructs RewardHandler.
func NewRewardHandler(db *gorm.DB) *RewardHandler {
	return &RewardHandler{db: db}
}

type rewardRequest struct {
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	VisitsRequired       int       `json:"visits_required"`
	MaxRedemptionsPerDay int       `json:"max_redemptions_per_day"`
	ValidUntil           time.Time `json:"valid_until"`
}

func (r *rewardRequest) validate() *ValidationError {
	fields := map[string]string{}
	if r.Name == "" {
		fields["name"] = "name is required"
	}
	if r.VisitsRequired < 1 {
		fields["visits_required"] = "visits_required must be at least 1"
	}
	if r.MaxRedemptionsPerDay < 1 {
		fields["max_redemptions_per_day"] = "max_redemptions_per_day must be at least 1"
	}
	if !r.ValidUntil.After(time.Now()) {
		fields["valid_until"] = "valid_until must be in the future"
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "invalid reward data", Fields: fields}
	}
	return nil
}

// List returns the caller's rewards, newest first.
func (h *RewardHandler) List(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	vendor, err := vendorFor(h.db, principal.UserID)
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Reward{}).Where("vendor_id = ?", vendor.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var rewards []models.Reward
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&rewards).Error; err != nil {
		return err
	}

	return success(c, fiber.StatusOK, "rewards", fiber.Map{
		"items": rewards,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// Create persists a new reward for the caller's vendor.
func (h *RewardHandler) Create(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	vendor, err := vendorFor(h.db, principal.UserID)
	if err != nil {
		return err
	}

	var req rewardRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.VisitsRequired == 0 {
		req.VisitsRequired = 1
	}
	if req.MaxRedemptionsPerDay == 0 {
		req.MaxRedemptionsPerDay = 1
	}
	if verr := req.validate(); verr != nil {
		return verr
	}

	reward := models.Reward{
		VendorID:             vendor.ID,
		Name:                 req.Name,
		Description:          req.Description,
		VisitsRequired:       req.VisitsRequired,
		MaxRedemptionsPerDay: req.MaxRedemptionsPerDay,
		ValidUntil:           req.ValidUntil,
	}

	if err := h.db.Create(&reward).Error; err != nil {
		return err
	}

	return success(c, fiber.StatusCreated, "reward created", reward)
}

// Get returns one of the caller's rewards by ID.
func (h *RewardHandler) Get(c *fiber.Ctx) error {
	reward, err := h.scopedReward(c)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "reward", reward)
}

// Update modifies one of the caller's rewards.
func (h *RewardHandler) Update(c *fiber.Ctx) error {
	reward, err := h.scopedReward(c)
	if err != nil {
		return err
	}

	var req rewardRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if verr := req.validate(); verr != nil {
		return verr
	}

	updates := map[string]interface{}{
		"name":                    req.Name,
		"description":             req.Description,
		"visits_required":         req.VisitsRequired,
		"max_redemptions_per_day": req.MaxRedemptionsPerDay,
		"valid_until":             req.ValidUntil,
	}

	if err := h.db.Model(reward).Updates(updates).Error; err != nil {
		return err
	}

	return success(c, fiber.StatusOK, "reward updated", reward)
}

// Delete removes one of the caller's rewards.
func (h *RewardHandler) Delete(c *fiber.Ctx) error {
	reward, err := h.scopedReward(c)
	if err != nil {
		return err
	}

	if err := h.db.Delete(reward).Error; err != nil {
		return err
	}

	return success(c, fiber.StatusOK, "reward deleted", nil)
}

// scopedReward loads the reward in :id if and only if the caller's vendor
// owns it.
func (h *RewardHandler) scopedReward(c *fiber.Ctx) (*models.Reward, error) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	vendor, err := vendorFor(h.db, principal.UserID)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var reward models.Reward
	if err := h.db.Where("id = ? AND vendor_id = ?", id, vendor.ID).First(&reward).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "reward not found")
		}
		return nil, err
	}

	return &reward, nil
}
