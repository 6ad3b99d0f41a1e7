package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"litshop/internal/domain"
	applog "litshop/internal/log"
	"litshop/internal/services"
	"litshop/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

// Categories handles GET /api/v1/categories.
func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"categories": cats})
}

// Books handles GET /api/v1/books?q=&category=&in_stock=&limit=.
func (h *CatalogHandler) Books(c *fiber.Ctx) error {
	f := domain.BookFilter{
		InStockOnly: c.QueryBool("in_stock"),
		Limit:       validate.Limit(c.Query("limit"), 50, 200),
	}
	if raw := c.Query("q"); strings.TrimSpace(raw) != "" {
		q, ok := validate.Q(raw)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "q"})
			return writeError(c, domain.Invalid("q must be a plain keyword"))
		}
		f.Query = q
	}
	if raw := c.Query("category"); strings.TrimSpace(raw) != "" {
		id, ok := validate.ID(raw)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "category"})
			return writeError(c, domain.Invalid("invalid category"))
		}
		f.CategoryID = id
	}

	books, err := h.Catalog.ListBooks(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"books": books, "count": len(books)})
}
