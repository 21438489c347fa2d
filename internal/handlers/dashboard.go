package handlers

import (
	"github.com/gofiber/fiber/v2"

	"privacy-guard/internal/models"
)

type DashboardCounts struct {
	DataTypes     int64 `json:"data_types"`
	Consents      int64 `json:"consents"`
	OpenDsars     int64 `json:"open_dsars"`
	OpenIncidents int64 `json:"open_incidents"`
	Domains       int64 `json:"domains"`
}

func (h *Handlers) GetDashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	db := h.DB.WithContext(ctx)

	var counts DashboardCounts
	db.Model(&models.DataType{}).Count(&counts.DataTypes)
	db.Model(&models.ConsentRecord{}).Count(&counts.Consents)
	db.Model(&models.DsarRequest{}).Where("status NOT IN ?", []string{"Completed", "Rejected"}).Count(&counts.OpenDsars)
	db.Model(&models.Incident{}).Where("status <> ?", "Resolved").Count(&counts.OpenIncidents)
	db.Model(&models.Domain{}).Count(&counts.Domains)

	response := fiber.Map{
		"installation": h.Installer.CheckStatus(ctx),
		"counts":       counts,
	}
	if h.Health != nil {
		response["health"] = h.Health.Collect(ctx)
	}
	return c.JSON(response)
}
