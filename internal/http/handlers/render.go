package handlers

import "github.com/gofiber/fiber/v2"

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Surface the request id so a user can quote it when reporting a problem
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		data["RequestID"] = rid
	}
	return c.Render(tmpl, data)
}
