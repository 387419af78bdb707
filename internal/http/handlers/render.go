package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const consentCookie = "cookie_consent"

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["ConsentGiven"] = c.Cookies(consentCookie) == "accepted"
	if rid, ok := c.Locals("requestid").(string); ok {
		data["RequestID"] = rid
	}
	return c.Render(tmpl, data)
}

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api")
}

// detail writes the JSON error body the contact form understands.
func detail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"detail": msg})
}
