package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"litshop/internal/domain"
	applog "litshop/internal/log"
	"litshop/internal/services"
	"litshop/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService

	// Timeout bounds one placement, retries included. Zero means no bound.
	Timeout time.Duration
	// RetryAttempts is how often a lost stock race is re-planned.
	RetryAttempts int
}

// Place handles POST /api/v1/orders.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var req domain.OrderRequest
	if err := c.BodyParser(&req); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "body"})
		return writeError(c, domain.Invalid("body must be a JSON object with buyer_id and items"))
	}

	ctx := c.UserContext()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	var opts []services.RetryOption
	if h.RetryAttempts > 0 {
		opts = append(opts, services.WithMaxAttempts(h.RetryAttempts))
	}
	rc, err := h.Orders.PlaceWithRetry(ctx, req, opts...)
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "api.order.place", map[string]any{"order_id": rc.OrderID, "total": rc.TotalAmount.String()})
	return c.Status(fiber.StatusCreated).JSON(rc)
}

// View handles GET /api/v1/orders/:id.
func (h *OrderHandler) View(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id"})
		return writeError(c, domain.ErrOrderNotFound)
	}
	o, err := h.Orders.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(o)
}

// List handles GET /api/v1/orders?limit=n, newest first.
func (h *OrderHandler) List(c *fiber.Ctx) error {
	limit := validate.Limit(c.Query("limit"), 50, 200)
	orders, err := h.Orders.List(c.UserContext(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"orders": orders, "limit": limit})
}
