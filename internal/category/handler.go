package category

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/tienda-labs/ecommerce-backend/internal/subcategory"
)

// Handler serves the public, read-only category endpoints. Mutations go
// through the admin surface in the catalog package.
type Handler struct {
	service       ServiceInterface
	subcategories subcategory.ServiceInterface
}

func NewHandler(service ServiceInterface, subcategories subcategory.ServiceInterface) *Handler {
	return &Handler{service: service, subcategories: subcategories}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/categories", h.listCategories)
	app.Get("/api/categories/:id", h.getCategory)
}

type categoryWithChildren struct {
	Category
	Subcategories []subcategory.Subcategory `json:"subcategories"`
}

func (h *Handler) listCategories(c *fiber.Ctx) error {
	var active *bool
	if raw := c.Query("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "active must be true or false",
			})
		}
		active = &parsed
	}

	categories, err := h.service.List(active)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "could not list categories",
			"error":   err.Error(),
		})
	}

	if include, _ := strconv.ParseBool(c.Query("includeChildren")); include {
		enriched := make([]categoryWithChildren, 0, len(categories))
		for _, cat := range categories {
			children, err := h.subcategories.List(&cat.ID, active)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"message": "could not list subcategories",
					"error":   err.Error(),
				})
			}
			enriched = append(enriched, categoryWithChildren{Category: cat, Subcategories: children})
		}
		return c.JSON(fiber.Map{
			"success": true,
			"count":   len(enriched),
			"data":    enriched,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(categories),
		"data":    categories,
	})
}

func (h *Handler) getCategory(c *fiber.Ctx) error {
	categoryID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid category id",
		})
	}

	cat, err := h.service.GetByID(categoryID)
	if err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "category not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "could not load category",
			"error":   err.Error(),
		})
	}

	if include, _ := strconv.ParseBool(c.Query("includeChildren")); include {
		children, err := h.subcategories.List(&cat.ID, nil)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "could not list subcategories",
				"error":   err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    categoryWithChildren{Category: cat, Subcategories: children},
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": cat})
}
