package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/trekbot/internal/config"
	"github.com/example/trekbot/internal/models"
	"github.com/example/trekbot/internal/services"
	"github.com/example/trekbot/internal/utils"
)

// PasswordResetHandler manages the forgot-password flow.
type PasswordResetHandler struct {
	db   *gorm.DB
	cfg  *config.Config
	mail *services.MailService
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(db *gorm.DB, cfg *config.Config, mail *services.MailService) *PasswordResetHandler {
	return &PasswordResetHandler{db: db, cfg: cfg, mail: mail}
}

type requestResetRequest struct {
	Email string `json:"email"`
}

// The response is identical whether or not the email is registered, so the
// endpoint cannot be used to enumerate accounts.
const resetRequestedMessage = "If the email is registered, an OTP has been sent."

// RequestReset generates a 6-digit code for the account, replacing any
// previous code, and emails it.
func (h *PasswordResetHandler) RequestReset(c *fiber.Ctx) error {
	var req requestResetRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return &ValidationError{Message: "email is required"}
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return success(c, fiber.StatusOK, resetRequestedMessage, nil)
		}
		return err
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate code")
	}

	// Replace any live code in one transaction so a concurrent request
	// cannot leave two valid codes behind.
	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.PasswordResetOTP{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.PasswordResetOTP{UserID: user.ID, Code: code}).Error
	}); err != nil {
		return err
	}

	h.mail.SendPasswordResetOTP(user.Email, code)

	return success(c, fiber.StatusOK, resetRequestedMessage, nil)
}

type confirmResetRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

// ConfirmReset verifies the submitted code and sets the new password. The
// code row is locked, checked and deleted inside one transaction, so a code
// is usable exactly once.
func (h *PasswordResetHandler) ConfirmReset(c *fiber.Ctx) error {
	var req confirmResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	fields := map[string]string{}
	if req.Email == "" {
		fields["email"] = "email is required"
	}
	if req.OTP == "" {
		fields["otp"] = "otp is required"
	}
	if len(req.NewPassword) < 6 {
		fields["new_password"] = "password must be at least 6 characters"
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "invalid reset data", Fields: fields}
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ValidationError{Message: "invalid or expired OTP"}
		}
		return err
	}

	passwordHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	invalidOTP := &ValidationError{Message: "invalid or expired OTP"}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		var otp models.PasswordResetOTP
		err := lockForUpdate(tx).
			Where("user_id = ?", user.ID).
			First(&otp).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalidOTP
			}
			return err
		}

		if otp.Code != req.OTP || otp.Expired(time.Now()) {
			return invalidOTP
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", user.ID).
			Update("password_hash", passwordHash).Error; err != nil {
			return err
		}

		return tx.Delete(&otp).Error
	}); err != nil {
		return err
	}

	return success(c, fiber.StatusOK, "password has been reset successfully", nil)
}
