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

// RedemptionHandler manages reward redemptions. Creation checks expiry and
// the per-day cap inside one transaction holding a row lock on the reward,
// so two concurrent requests at the cap boundary cannot both pass.
type RedemptionHandler struct {
	db *gorm.DB
}

// NewRedemptionHandler constructs RedemptionHandler.
func NewRedemptionHandler(db *gorm.DB) *RedemptionHandler {
	return &RedemptionHandler{db: db}
}

type createRedemptionRequest struct {
	RewardID uuid.UUID `json:"reward_id"`
}

// Create redeems a reward for the caller.
func (h *RedemptionHandler) Create(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createRedemptionRequest
	if err := c.BodyParser(&req); err != nil || req.RewardID == uuid.Nil {
		return &ValidationError{Message: "reward_id is required"}
	}

	var redemption models.RewardRedemption

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		var reward models.Reward
		if err := lockForUpdate(tx).First(&reward, "id = ?", req.RewardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "reward not found")
			}
			return err
		}

		now := time.Now()
		if reward.Expired(now) {
			return &ValidationError{Message: "reward has expired"}
		}

		dayStart, dayEnd := dayBounds(now)
		var todayCount int64
		if err := tx.Model(&models.RewardRedemption{}).
			Where("reward_id = ? AND redeemed_at >= ? AND redeemed_at < ?", reward.ID, dayStart, dayEnd).
			Count(&todayCount).Error; err != nil {
			return err
		}

		if todayCount >= int64(reward.MaxRedemptionsPerDay) {
			return &ValidationError{Message: "daily redemption limit reached"}
		}

		redemption = models.RewardRedemption{
			UserID:     principal.UserID,
			RewardID:   reward.ID,
			RedeemedAt: now,
		}
		return tx.Create(&redemption).Error
	}); err != nil {
		return err
	}

	return success(c, fiber.StatusCreated, "reward redeemed", redemption)
}

// List returns the redemptions visible to the caller, newest first.
func (h *RedemptionHandler) List(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	scoped, err := h.scope(h.db.Model(&models.RewardRedemption{}), principal)
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)

	var total int64
	if err := scoped.Count(&total).Error; err != nil {
		return err
	}

	var redemptions []models.RewardRedemption
	if err := scoped.Order("redeemed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&redemptions).Error; err != nil {
		return err
	}

	return success(c, fiber.StatusOK, "redemptions", fiber.Map{
		"items": redemptions,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// Get returns a single redemption if it is within the caller's scope.
func (h *RedemptionHandler) Get(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	scoped, err := h.scope(h.db.Model(&models.RewardRedemption{}), principal)
	if err != nil {
		return err
	}

	var redemption models.RewardRedemption
	if err := scoped.Where("reward_redemptions.id = ?", id).First(&redemption).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "redemption not found")
		}
		return err
	}

	return success(c, fiber.StatusOK, "redemption", redemption)
}

func (h *RedemptionHandler) scope(query *gorm.DB, principal middleware.Principal) (*gorm.DB, error) {
	switch principal.Role {
	case models.RoleVendor:
		vendor, err := vendorFor(h.db, principal.UserID)
		if err != nil {
			return nil, err
		}
		return query.Where("reward_id IN (?)",
			h.db.Model(&models.Reward{}).Select("id").Where("vendor_id = ?", vendor.ID)), nil
	case models.RoleAdmin:
		return query, nil
	default:
		return query.Where("user_id = ?", principal.UserID), nil
	}
}
