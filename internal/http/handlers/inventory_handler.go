package handlers

import (
	"github.com/gofiber/fiber/v2"

	"litshop/internal/domain"
	applog "litshop/internal/log"
	"litshop/internal/services"
	"litshop/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

// Check handles GET /api/v1/books/:id/availability.
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	bookID, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "book"})
		return writeError(c, &domain.BookError{Kind: domain.ErrBookNotFound, BookID: c.Params("id")})
	}
	avail, err := h.Inv.CheckAvailability(c.UserContext(), bookID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(avail)
}
