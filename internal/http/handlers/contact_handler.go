package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"matifood/internal/log"
	"matifood/internal/mail"
	"matifood/internal/services"
	"matifood/internal/verification"
)

type ContactHandler struct {
	Contact    *services.ContactService
	Newsletter *services.NewsletterService
}

func (h *ContactHandler) Submit(c *fiber.Ctx) error {
	var in services.ContactInput
	if err := c.BodyParser(&in); err != nil {
		log.Security(c, "validation.fail", map[string]any{"field": "body"})
		return detail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	sub, err := h.Contact.Submit(c.UserContext(), in, c.IP())
	if err != nil {
		return h.contactError(c, in, err)
	}
	log.Audit(c, "contact.submit", map[string]any{
		"id":         sub.ID,
		"email":      log.Fingerprint(sub.Email),
		"newsletter": sub.Newsletter,
	})
	return c.JSON(sub)
}

func (h *ContactHandler) contactError(c *fiber.Ctx, in services.ContactInput, err error) error {
	var ie *services.InputError
	fp := log.Fingerprint(in.Email)
	switch {
	case errors.As(err, &ie):
		log.Security(c, "validation.fail", map[string]any{"field": "contact", "detail": ie.Detail, "email": fp})
		return detail(c, fiber.StatusBadRequest, ie.Detail)
	case errors.Is(err, verification.ErrMissingToken):
		log.Security(c, "verification.missing", map[string]any{"email": fp})
		return detail(c, fiber.StatusBadRequest, "reCAPTCHA token is required")
	case errors.Is(err, verification.ErrTokenRejected):
		log.Security(c, "verification.fail", map[string]any{"email": fp})
		return detail(c, fiber.StatusBadRequest, "reCAPTCHA verification failed. Please try again.")
	case errors.Is(err, verification.ErrVerifierUnavailable):
		log.Error(c, "verification.unavailable", err, nil)
		return detail(c, fiber.StatusServiceUnavailable, "Verification is temporarily unavailable. Please try again later.")
	case errors.Is(err, services.ErrRelayFailed):
		log.Error(c, "contact.relay.fail", err, map[string]any{"email": fp})
		return detail(c, fiber.StatusBadGateway, "Failed to submit contact form")
	}
	log.Error(c, "contact.submit.fail", err, nil)
	return detail(c, fiber.StatusInternalServerError, "Failed to submit contact form")
}

type newsletterInput struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *ContactHandler) Subscribe(c *fiber.Ctx) error {
	var in newsletterInput
	if err := c.BodyParser(&in); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	sub, created, err := h.Newsletter.Subscribe(c.UserContext(), in.Email, in.Name)
	var ie *services.InputError
	switch {
	case errors.As(err, &ie):
		log.Security(c, "validation.fail", map[string]any{"field": "newsletter"})
		return detail(c, fiber.StatusBadRequest, ie.Detail)
	case err != nil:
		log.Error(c, "newsletter.subscribe.fail", err, nil)
		return detail(c, fiber.StatusInternalServerError, "Failed to subscribe to newsletter")
	}
	log.Audit(c, "newsletter.subscribe", map[string]any{"email": log.Fingerprint(sub.Email), "new": created})
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(sub)
}

func (h *ContactHandler) Unsubscribe(c *fiber.Ctx) error {
	email := c.Params("email")
	err := h.Newsletter.Unsubscribe(c.UserContext(), email)
	var ie *services.InputError
	switch {
	case errors.As(err, &ie):
		return detail(c, fiber.StatusBadRequest, ie.Detail)
	case errors.Is(err, mail.ErrNotSubscribed):
		return detail(c, fiber.StatusNotFound, "Email not found in newsletter")
	case err != nil:
		log.Error(c, "newsletter.unsubscribe.fail", err, nil)
		return detail(c, fiber.StatusInternalServerError, "Failed to unsubscribe from newsletter")
	}
	log.Audit(c, "newsletter.unsubscribe", map[string]any{"email": log.Fingerprint(email)})
	return c.JSON(fiber.Map{"message": "Successfully unsubscribed from newsletter"})
}
