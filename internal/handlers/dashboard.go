package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"leadflow/internal/services"
)

// DashboardHandler serves the aggregate pipeline metrics
type DashboardHandler struct {
	dashboard *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GetMetrics returns the dashboard aggregate
// GET /dashboard
func (h *DashboardHandler) GetMetrics(c *fiber.Ctx) error {
	metrics, err := h.dashboard.GetMetrics(c.Context())
	if err != nil {
		log.Printf("❌ Failed to compute dashboard metrics: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute dashboard metrics",
		})
	}
	return c.JSON(metrics)
}
