package handlers

import (
	"github.com/gofiber/fiber/v2"

	"matifood/internal/catalog"
	"matifood/internal/log"
	"matifood/internal/validate"
)

type CatalogHandler struct {
	Catalog *catalog.Catalog
}

func (h *CatalogHandler) Products(c *fiber.Ctx) error {
	return c.JSON(h.Catalog.Products())
}

func (h *CatalogHandler) Product(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return detail(c, fiber.StatusNotFound, "Product not found")
	}
	p, err := h.Catalog.Product(id)
	if err != nil {
		return detail(c, fiber.StatusNotFound, "Product not found")
	}
	return c.JSON(p)
}

// Featured serves the homepage testimonials, limit 1-10 (default 3).
func (h *CatalogHandler) Featured(c *fiber.Ctx) error {
	limit, ok := validate.Limit(c.Query("limit"), featuredOnHome, 1, 10)
	if !ok {
		return detail(c, fiber.StatusBadRequest, "limit must be between 1 and 10")
	}
	return c.JSON(h.Catalog.Featured(limit))
}
