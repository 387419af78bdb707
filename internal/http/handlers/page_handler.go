package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"matifood/internal/catalog"
	"matifood/internal/config"
	"matifood/internal/log"
	"matifood/internal/verification"
)

const featuredOnHome = 3

type PageHandler struct {
	Catalog *catalog.Catalog
	Config  config.Config
}

// Home composes the landing page sections in fixed order.
func (h *PageHandler) Home(c *fiber.Ctx) error {
	scripts := verification.NewScriptSet(h.Config.Recaptcha.ScriptURL)
	widget, err := verification.RenderHTML(scripts.Widget("contact-captcha", h.Config.Recaptcha.SiteKey))
	if err != nil {
		return err
	}
	return render(c, "home", fiber.Map{
		"Brand":        h.Catalog.Brand(),
		"About":        h.Catalog.About(),
		"Contact":      h.Catalog.Contact(),
		"Products":     h.Catalog.Products(),
		"Testimonials": h.Catalog.Featured(featuredOnHome),
		"Widget":       widget,
		"SiteKey":      h.Config.Recaptcha.SiteKey,
		"BackendURL":   h.Config.BackendURL,
		"Development":  h.Config.IsDevelopment(),
		"BypassToken":  verification.DevBypassToken,
		"Year":         time.Now().Year(),
	})
}

// Consent records the one-time cookie banner dismissal.
func (h *PageHandler) Consent(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     consentCookie,
		Value:    "accepted",
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	log.Info(c, "consent.accepted", nil)
	// plain form posts (no script) go back to the page
	if c.Get(fiber.HeaderXRequestedWith) == "" && strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMETextHTML) {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PageHandler) NotFound(c *fiber.Ctx) error {
	if isAPI(c) {
		return detail(c, fiber.StatusNotFound, "Not found")
	}
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
}
