package handler

import (
	"go-giftshop-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	service service.DashboardService
	db      *gorm.DB
}

func NewDashboardHandler(s service.DashboardService, db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{service: s, db: db}
}

// GetSalesSummary returns revenue, order count, and average order value.
// Query params: period (today|week|month|all, default today)
func (h *DashboardHandler) GetSalesSummary(c *fiber.Ctx) error {
	period := c.Query("period", service.PeriodToday)

	summary, err := h.service.GetSalesSummary(period)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch sales summary"})
	}

	return c.JSON(fiber.Map{
		"period": period,
		"data":   summary,
	})
}

// GetInventoryStats returns catalog-wide overview numbers
func (h *DashboardHandler) GetInventoryStats(c *fiber.Ctx) error {
	stats, err := h.service.GetInventoryStats()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch inventory stats"})
	}
	return c.JSON(stats)
}

// ListSales returns the sales log, newest first.
// Query params: period, q (free-text search)
func (h *DashboardHandler) ListSales(c *fiber.Ctx) error {
	sales, err := h.service.ListSales(c.Query("period", service.PeriodAll), c.Query("q"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch sales"})
	}
	return c.JSON(sales)
}

// SeedDemoData loads the demo catalog and directory (idempotent)
func (h *DashboardHandler) SeedDemoData(c *fiber.Ctx) error {
	if err := service.SeedDemoData(h.db, getUserID(c)); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Demo data seeded"})
}
