package handlers

import "github.com/gofiber/fiber/v2"

const APIVersion = "1.0.0"

type HealthHandler struct {
	MailConfigured bool
}

func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Welcome to Mati Food API - Taste the Goodness of Nature",
		"version": APIVersion,
	})
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	mail := "log"
	if h.MailConfigured {
		mail = "mailgun"
	}
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"mail":    mail,
		"message": "Mati Food API is running",
	})
}
