package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"privacy-guard/internal/models"
	"privacy-guard/internal/services/installer"
)

// GetReferenceCatalog returns a lookup catalog for UI dropdowns.
func (h *Handlers) GetReferenceCatalog(c *fiber.Ctx) error {
	rows, err := installer.ListCatalog(c.UserContext(), h.DB, c.Params("catalog"))
	if errors.Is(err, installer.ErrUnknownCatalog) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":    err.Error(),
			"catalogs": installer.CatalogNames(),
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Reference data unavailable; has the installation run?",
		})
	}
	return c.JSON(rows)
}

func (h *Handlers) GetAlertSettings(c *fiber.Ctx) error {
	var settings []models.DefaultAlertSetting
	if err := h.DB.WithContext(c.UserContext()).
		Order("alert_type, threshold_days desc").Find(&settings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Alert settings unavailable; has the installation run?",
		})
	}
	return c.JSON(settings)
}

func (h *Handlers) GetRetentionPolicies(c *fiber.Ctx) error {
	var policies []models.DefaultRetentionPolicy
	if err := h.DB.WithContext(c.UserContext()).
		Order("data_category").Find(&policies).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Retention policies unavailable; has the installation run?",
		})
	}
	return c.JSON(policies)
}
