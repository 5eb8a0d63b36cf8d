package handler

import (
	"errors"
	"os"

	"go-giftshop-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CheckoutHandler struct {
	service service.CheckoutService
}

func NewCheckoutHandler(s service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: s}
}

func storeName() string {
	name := os.Getenv("STORE_NAME")
	if name == "" {
		name = "Gift Factory"
	}
	return name
}

func (h *CheckoutHandler) ProcessSale(c *fiber.Ctx) error {
	var req service.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	receipt, err := h.service.ProcessSale(&req, getUserID(c), getUserName(c))
	if err != nil {
		status := 400
		if errors.Is(err, service.ErrDuplicateSale) {
			status = 409
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{
		"message":      "Sale recorded",
		"receipt":      receipt,
		"receipt_text": receipt.Format(storeName()),
	})
}

type reverseSaleRequest struct {
	// True rolls inventory and points back before deleting the record;
	// false deletes the log entry only.
	RestoreSideEffects bool `json:"restore_side_effects"`
}

func (h *CheckoutHandler) ReverseSale(c *fiber.Ctx) error {
	saleID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	// Body is optional; a bare DELETE removes the log entry only.
	var req reverseSaleRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
		}
	}

	if err := h.service.ReverseSale(saleID, req.RestoreSideEffects, getUserID(c), getUserName(c)); err != nil {
		if errors.Is(err, service.ErrSaleNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	msg := "Sale log deleted (stock and points untouched)"
	if req.RestoreSideEffects {
		msg = "Sale reversed"
	}
	return c.JSON(fiber.Map{"message": msg})
}
