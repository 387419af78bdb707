package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"matifood/internal/catalog"
	"matifood/internal/log"
)

// NewApp builds the Fiber application with middleware and routes.
func NewApp(d *Deps) *fiber.App {
	engine := html.New(d.Config.TemplateDir, ".html")
	engine.AddFunc("price", catalog.FormatPrice)
	engine.Reload(d.Config.IsDevelopment())

	app := fiber.New(fiber.Config{
		Views:        engine,
		BodyLimit:    d.Config.BodyLimit,
		ErrorHandler: ErrorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New(helmet.Config{
		// reCAPTCHA renders inside a cross-origin iframe
		CrossOriginEmbedderPolicy: "unsafe-none",
		ContentSecurityPolicy: "default-src 'self'; " +
			"script-src 'self' https://www.google.com https://www.gstatic.com; " +
			"frame-src https://www.google.com https://recaptcha.google.com; " +
			"img-src 'self' https: data:; style-src 'self' 'unsafe-inline'; " +
			"connect-src 'self' " + d.Config.BackendURL,
	}))
	app.Use(d.limiter("global", 120, time.Minute, func(c *fiber.Ctx) bool {
		return strings.HasPrefix(c.Path(), "/static/") || c.Path() == "/healthz"
	}))

	// ---------- Static assets ----------
	app.Static("/static", d.Config.StaticDir)

	// ---------- Page ----------
	app.Get("/", d.PageHandler.Home)
	app.Post("/consent", d.PageHandler.Consent)

	// ---------- API ----------
	api := app.Group("/api")
	api.Get("/", d.HealthHandler.Root)
	api.Get("/health", d.HealthHandler.Health)

	api.Post("/contact", d.limiter("contact", 5, 10*time.Minute, nil), d.ContactHandler.Submit)
	api.Post("/contact/newsletter", d.limiter("newsletter", 10, 10*time.Minute, nil), d.ContactHandler.Subscribe)
	api.Delete("/contact/newsletter/:email", d.limiter("newsletter", 10, 10*time.Minute, nil), d.ContactHandler.Unsubscribe)

	api.Get("/products", d.CatalogHandler.Products)
	api.Get("/products/:id", d.CatalogHandler.Product)
	api.Get("/reviews/featured", d.CatalogHandler.Featured)

	api.Get("/analytics/stats", d.AnalyticsHandler.SiteStats)
	api.Post("/analytics/events", d.limiter("events", 60, time.Minute, nil), d.AnalyticsHandler.Track)

	// ---------- Ops ----------
	app.Get("/metrics", RequireToken(d.Config.MetricsToken), adaptor.HTTPHandler(d.Metrics.Handler()))
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	app.Use(d.PageHandler.NotFound)
	return app
}

func (d *Deps) limiter(name string, max int, window time.Duration, skip func(*fiber.Ctx) bool) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		Next:       skip,
		Storage:    d.LimiterStorage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|" + name
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Security(c, "rate."+name+".hit", nil)
			d.Metrics.RateLimited.WithLabelValues(name).Inc()
			return detail(c, fiber.StatusTooManyRequests, "Too many requests. Please try again later.")
		},
	})
}

// ErrorHandler logs the error and answers without leaking internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			msg = fe.Message
		}
	}
	if code >= fiber.StatusInternalServerError {
		log.Error(c, "server.error", err, nil)
	} else {
		log.Info(c, "request.error", map[string]any{"code": code, "err": err.Error()})
	}

	if isAPI(c) {
		return detail(c, code, msg)
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
