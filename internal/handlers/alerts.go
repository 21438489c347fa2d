package handlers

import (
	"github.com/gofiber/fiber/v2"
)

func (h *Handlers) GetAlerts(c *fiber.Ctx) error {
	alerts, err := h.Alerts.List(c.UserContext(), c.QueryInt("limit", 100))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(alerts)
}

// RunAlertSweep runs the alert sweep now instead of waiting for the
// schedule.
func (h *Handlers) RunAlertSweep(c *fiber.Ctx) error {
	result, err := h.Alerts.Sweep(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	response := fiber.Map{
		"evaluated": result.Evaluated,
		"raised":    result.Raised,
	}
	if next, ok := h.Alerts.NextRun(); ok {
		response["next_run"] = next
	}
	return c.JSON(response)
}
