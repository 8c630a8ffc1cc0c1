package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/trekbot/internal/config"
	"github.com/example/trekbot/internal/handlers"
	"github.com/example/trekbot/internal/middleware"
	"github.com/example/trekbot/internal/models"
	"github.com/example/trekbot/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	mail := services.NewMailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom)

	authHandler := handlers.NewAuthHandler(db, cfg, mail)
	resetHandler := handlers.NewPasswordResetHandler(db, cfg, mail)
	profileHandler := handlers.NewProfileHandler(db)
	notificationHandler := handlers.NewNotificationHandler(db)
	vendorHandler := handlers.NewVendorHandler(db)
	rewardHandler := handlers.NewRewardHandler(db)
	checkInHandler := handlers.NewCheckInHandler(db)
	redemptionHandler := handlers.NewRedemptionHandler(db)
	adminHandler := handlers.NewAdminHandler(db)

	api := app.Group("/api")

	// Public auth routes
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/token/refresh", authHandler.Refresh)
	api.Post("/password-reset", resetHandler.RequestReset)
	api.Post("/password-reset/confirm", resetHandler.ConfirmReset)

	// Everything below requires a bearer access token.
	protected := api.Group("", middleware.Auth(cfg))

	protected.Post("/logout", authHandler.Logout)
	protected.Get("/profile", profileHandler.GetProfile)

	protected.Get("/notifications", notificationHandler.List)
	protected.Get("/notifications/toggle", notificationHandler.GetPreference)
	protected.Post("/notifications/toggle", notificationHandler.SetPreference)
	protected.Get("/notifications/count", notificationHandler.CountUnread)

	requireVendor := middleware.RequireRole(models.RoleVendor)
	protected.Get("/vendor/dashboard", requireVendor, vendorHandler.Dashboard)
	protected.Get("/rewards", requireVendor, rewardHandler.List)
	protected.Post("/rewards", requireVendor, rewardHandler.Create)
	protected.Get("/rewards/:id", requireVendor, rewardHandler.Get)
	protected.Put("/rewards/:id", requireVendor, rewardHandler.Update)
	protected.Delete("/rewards/:id", requireVendor, rewardHandler.Delete)

	protected.Get("/checkins", checkInHandler.List)
	protected.Post("/checkins", checkInHandler.Create)
	protected.Get("/checkins/:id", checkInHandler.Get)
	protected.Put("/checkins/:id", checkInHandler.Close)

	protected.Get("/redemptions", redemptionHandler.List)
	protected.Post("/redemptions", redemptionHandler.Create)
	protected.Get("/redemptions/:id", redemptionHandler.Get)

	protected.Get("/admin/dashboard", middleware.RequireRole(models.RoleAdmin), adminHandler.DashboardOverview)
}
