package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"litshop/internal/domain"
	applog "litshop/internal/log"
)

// apiError is the body of every non-2xx API response.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// classify maps an order/statistics failure to an HTTP status, a stable error
// code and a message that is safe to show. ok is false for internal failures.
func classify(err error) (status int, code, msg string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return fiber.StatusBadRequest, "invalid_request", err.Error(), true
	case errors.Is(err, domain.ErrBookNotFound):
		return fiber.StatusNotFound, "book_not_found", err.Error(), true
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "insufficient_stock", err.Error(), true
	case errors.Is(err, domain.ErrStockConflict):
		return fiber.StatusConflict, "stock_conflict", "stock changed while the order was being placed, please retry", true
	case errors.Is(err, domain.ErrOrderNotFound):
		return fiber.StatusNotFound, "order_not_found", "order not found", true
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "timeout", "the request took too long, please retry", false
	default:
		return fiber.StatusServiceUnavailable, "store_unavailable", "the store is temporarily unavailable, please retry", false
	}
}

func writeError(c *fiber.Ctx, err error) error {
	status, code, msg, ok := classify(err)
	if !ok {
		applog.Error(c, "api.error", err, map[string]any{"code": code})
	}
	return c.Status(status).JSON(apiError{Error: code, Message: msg})
}

// ErrorHandler is the app-wide fallback: API paths get a JSON body, pages get
// the friendly template. Internal details are logged, never shown.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	if status >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	} else {
		applog.Security(c, "request.rejected", map[string]any{"status": status})
	}

	if isAPI(c) {
		code, msg := "internal", "something went wrong, please retry"
		switch status {
		case fiber.StatusNotFound:
			code, msg = "not_found", "no such resource"
		case fiber.StatusRequestEntityTooLarge:
			code, msg = "body_too_large", "request body is too large"
		case fiber.StatusTooManyRequests:
			code, msg = "rate_limited", "rate limit exceeded, retry soon"
		default:
			if status < fiber.StatusInternalServerError {
				code, msg = "invalid_request", "request could not be processed"
			}
		}
		return c.Status(status).JSON(apiError{Error: code, Message: msg})
	}

	message := "Something went wrong. Please try again."
	if status == fiber.StatusNotFound {
		message = "Page not found"
	}
	if rerr := c.Status(status).Render("notfound", fiber.Map{"Message": message}); rerr != nil {
		return c.Status(status).SendString(message)
	}
	return nil
}

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), apiPrefix)
}
