package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/trekbot/internal/config"
	"github.com/example/trekbot/internal/models"
	"github.com/example/trekbot/internal/services"
	"github.com/example/trekbot/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db   *gorm.DB
	cfg  *config.Config
	mail *services.MailService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, mail *services.MailService) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, mail: mail}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates a new user account. A vendor-role registration also
// provisions the Vendor record, and every new user gets a welcome
// notification, all inside one transaction so a provisioning failure cannot
// leave a half-created account. The welcome email goes out after commit.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	fields := map[string]string{}
	if req.Username == "" {
		fields["username"] = "username is required"
	}
	if req.Email == "" {
		fields["email"] = "email is required"
	}
	if len(req.Password) < 6 {
		fields["password"] = "password must be at least 6 characters"
	}
	if req.Role == "" {
		req.Role = models.RoleTraveler
	}
	if !models.ValidRole(req.Role) {
		fields["role"] = "role must be one of admin, vendor, traveler"
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "invalid registration data", Fields: fields}
	}

	var existing models.User
	err := h.db.Where("username = ? OR email = ?", req.Username, req.Email).First(&existing).Error
	if err == nil {
		fields := map[string]string{}
		if existing.Username == req.Username {
			fields["username"] = "username already taken"
		}
		if existing.Email == req.Email {
			fields["email"] = "email already registered"
		}
		return &ValidationError{Message: "user already exists", Fields: fields}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		Username:             req.Username,
		Email:                req.Email,
		PasswordHash:         passwordHash,
		Role:                 req.Role,
		ReceiveNotifications: true,
		IsActive:             true,
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		if user.Role == models.RoleVendor {
			vendor := models.Vendor{
				Name:    user.Username,
				OwnerID: user.ID,
			}
			if err := tx.Create(&vendor).Error; err != nil {
				return err
			}
		}

		welcome := models.Notification{
			UserID:  user.ID,
			Message: "Welcome to TrekBot! Enjoy your journey.",
		}
		return tx.Create(&welcome).Error
	}); err != nil {
		return err
	}

	h.mail.SendWelcome(user.Username, user.Email)

	return success(c, fiber.StatusCreated, "registration successful", fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a user and issues an access+refresh token pair.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if !user.IsActive || !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	pair, err := utils.GenerateTokenPair(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.AccessTokenTTL, h.cfg.RefreshTokenTTL)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate tokens")
	}

	return success(c, fiber.StatusOK, "login successful", fiber.Map{
		"access":  pair.Access,
		"refresh": pair.Refresh,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Refresh rotates a refresh token: the presented token is blacklisted and a
// fresh pair is issued, so each refresh token is usable exactly once.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil || req.Refresh == "" {
		return fiber.NewError(fiber.StatusBadRequest, "refresh token is required")
	}

	claims, err := utils.ParseToken(h.cfg.JWTSecret, req.Refresh, utils.TokenTypeRefresh)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired refresh token")
	}

	var blacklisted int64
	if err := h.db.Model(&models.BlacklistedToken{}).Where("jti = ?", claims.ID).Count(&blacklisted).Error; err != nil {
		return err
	}
	if blacklisted > 0 {
		return fiber.NewError(fiber.StatusUnauthorized, "refresh token has been revoked")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired refresh token")
		}
		return err
	}
	if !user.IsActive {
		return fiber.NewError(fiber.StatusUnauthorized, "account disabled")
	}

	claimed, err := h.blacklist(claims)
	if err != nil {
		return err
	}
	if !claimed {
		// A concurrent refresh of the same token won the insert.
		return fiber.NewError(fiber.StatusUnauthorized, "refresh token has been revoked")
	}

	pair, err := utils.GenerateTokenPair(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.AccessTokenTTL, h.cfg.RefreshTokenTTL)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate tokens")
	}

	return success(c, fiber.StatusOK, "token refreshed", fiber.Map{
		"access":  pair.Access,
		"refresh": pair.Refresh,
	})
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

// Logout blacklists the caller's refresh token. Any failure maps to a
// generic 400 so the auth boundary leaks nothing, but the cause is logged.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req logoutRequest
	if err := c.BodyParser(&req); err != nil || req.Refresh == "" {
		return fiber.NewError(fiber.StatusBadRequest, "invalid token")
	}

	claims, err := utils.ParseToken(h.cfg.JWTSecret, req.Refresh, utils.TokenTypeRefresh)
	if err != nil {
		log.Warn().Err(err).Msg("logout with unparseable refresh token")
		return fiber.NewError(fiber.StatusBadRequest, "invalid token")
	}

	if _, err := h.blacklist(claims); err != nil {
		log.Warn().Err(err).Msg("failed to blacklist refresh token on logout")
		return fiber.NewError(fiber.StatusBadRequest, "invalid token")
	}

	return success(c, fiber.StatusOK, "logout successful", nil)
}

// blacklist records the token's jti. The insert is the atomic claim on the
// token: it reports false when another request already blacklisted the same
// jti, so concurrent rotations of one token have exactly one winner. Logging
// out an already-blacklisted token is a no-op.
func (h *AuthHandler) blacklist(claims *utils.Claims) (bool, error) {
	expiresAt := time.Now().Add(h.cfg.RefreshTokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	userID, _ := uuid.Parse(claims.UserID)
	entry := models.BlacklistedToken{
		JTI:       claims.ID,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	result := h.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
