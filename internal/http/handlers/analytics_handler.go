package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"matifood/internal/log"
	"matifood/internal/services"
)

type AnalyticsHandler struct {
	Stats     *services.StatsService
	Analytics *services.AnalyticsService
}

func (h *AnalyticsHandler) SiteStats(c *fiber.Ctx) error {
	return c.JSON(h.Stats.Stats(c.UserContext()))
}

type eventInput struct {
	Event      string         `json:"event"`
	Properties map[string]any `json:"properties"`
}

func (h *AnalyticsHandler) Track(c *fiber.Ctx) error {
	var in eventInput
	if err := c.BodyParser(&in); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	ev, err := h.Analytics.Track(c.UserContext(), in.Event, in.Properties)
	var ie *services.InputError
	if errors.As(err, &ie) {
		log.Security(c, "validation.fail", map[string]any{"field": "event"})
		return detail(c, fiber.StatusBadRequest, ie.Detail)
	}
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "Event tracked successfully", "id": ev.ID})
}
