package subcategory

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/tienda-labs/ecommerce-backend/internal/product"
)

// Handler serves the public, read-only subcategory endpoints.
type Handler struct {
	service  ServiceInterface
	products product.ServiceInterface
}

func NewHandler(service ServiceInterface, products product.ServiceInterface) *Handler {
	return &Handler{service: service, products: products}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/subcategories", h.listSubcategories)
	app.Get("/api/subcategories/:id", h.getSubcategory)
}

type subcategoryWithProducts struct {
	Subcategory
	Products []product.Product `json:"products"`
}

func (h *Handler) listSubcategories(c *fiber.Ctx) error {
	var categoryID *int
	if raw := c.Query("categoryId"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "categoryId must be a number",
			})
		}
		categoryID = &parsed
	}
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

	subcategories, err := h.service.List(categoryID, active)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "could not list subcategories",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(subcategories),
		"data":    subcategories,
	})
}

func (h *Handler) getSubcategory(c *fiber.Ctx) error {
	subcategoryID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid subcategory id",
		})
	}

	sub, err := h.service.GetByID(subcategoryID)
	if err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "subcategory not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "could not load subcategory",
			"error":   err.Error(),
		})
	}

	if include, _ := strconv.ParseBool(c.Query("includeChildren")); include {
		items, _, err := h.products.List(product.ListFilter{SubcategoryID: &sub.ID})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "could not list products",
				"error":   err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    subcategoryWithProducts{Subcategory: sub, Products: items},
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": sub})
}
