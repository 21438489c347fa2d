package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"privacy-guard/internal/services/installer"
)

type InstallRequest struct {
	IncludeSampleData bool                 `json:"include_sample_data"`
	AdminUser         *installer.AdminUser `json:"admin_user,omitempty"`
}

func (h *Handlers) InstallStatus(c *fiber.Ctx) error {
	return c.JSON(h.Installer.CheckStatus(c.UserContext()))
}

// Install runs the full installation. A failed installation has been rolled
// back and answers 500 with the result body.
func (h *Handlers) Install(c *fiber.Ctx) error {
	var req InstallRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	result, err := h.Installer.PerformInstallation(c.UserContext(), installer.Options{
		IncludeSampleData: req.IncludeSampleData,
		AdminUser:         req.AdminUser,
	})
	if errors.Is(err, installer.ErrInvalidAdmin) {
		return c.Status(fiber.StatusBadRequest).JSON(result)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(result)
	}

	recordActivity(h.DB, c, currentUserID(c), "install.perform",
		fmt.Sprintf("sample_data=%t", req.IncludeSampleData))
	return c.JSON(result)
}

func (h *Handlers) RemoveSampleData(c *fiber.Ctx) error {
	result, err := h.Installer.RemoveSampleData(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(result)
	}

	recordActivity(h.DB, c, currentUserID(c), "install.remove_sample_data",
		fmt.Sprintf("removed=%d", result.RemovedCount))
	return c.JSON(result)
}

func (h *Handlers) ResetInstallation(c *fiber.Ctx) error {
	result, err := h.Installer.ResetInstallation(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(result)
	}

	recordActivity(h.DB, c, currentUserID(c), "install.reset", "")
	return c.JSON(result)
}
