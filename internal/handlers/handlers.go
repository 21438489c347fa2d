package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"privacy-guard/internal/middleware"
	"privacy-guard/internal/models"
	"privacy-guard/internal/services/alerts"
	"privacy-guard/internal/services/health"
	"privacy-guard/internal/services/installer"
)

// Handlers serves the installation, catalog, dashboard and alert routes.
type Handlers struct {
	DB        *gorm.DB
	Installer *installer.Service
	Alerts    *alerts.Service
	Health    *health.Collector
}

func RegisterRoutes(app *fiber.App, h *Handlers) {
	api := app.Group("/api")

	// Public
	api.Post("/auth/login", Login)
	api.Get("/install/status", h.InstallStatus)

	protected := api.Group("/", middleware.AuthRequired())
	protected.Post("/auth/logout", Logout)
	protected.Get("/auth/profile", GetProfile)
	protected.Post("/auth/2fa/setup", Setup2FA)
	protected.Post("/auth/2fa/verify", Verify2FA)
	protected.Post("/auth/2fa/disable", Disable2FA)

	protected.Get("/dashboard", h.GetDashboard)
	protected.Get("/reference/:catalog", h.GetReferenceCatalog)
	protected.Get("/settings/alerts", h.GetAlertSettings)
	protected.Get("/settings/retention", h.GetRetentionPolicies)
	protected.Get("/alerts", h.GetAlerts)

	admin := protected.Group("/admin", middleware.AdminRequired())
	admin.Post("/install", h.Install)
	admin.Delete("/sample-data", h.RemoveSampleData)
	admin.Post("/reset", h.ResetInstallation)
	admin.Post("/alerts/sweep", h.RunAlertSweep)
}

// recordActivity writes an audit row. Failures are logged, never returned.
func recordActivity(db *gorm.DB, c *fiber.Ctx, userID, action, details string) {
	entry := models.ActivityLog{
		UserID:  userID,
		Action:  action,
		Details: details,
		IP:      c.IP(),
	}
	if err := db.Create(&entry).Error; err != nil {
		slog.Warn("record activity", "action", action, "error", err)
	}
}

func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}
