package product

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Handler serves the public, read-only product endpoints.
type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/products", h.listProducts)
	app.Get("/api/products/:id", h.getProduct)
}

func (h *Handler) listProducts(c *fiber.Ctx) error {
	filter := ListFilter{
		Search: c.Query("search"),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 20),
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	if raw := c.Query("categoryId"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "categoryId must be a number",
			})
		}
		filter.CategoryID = &parsed
	}
	if raw := c.Query("subcategoryId"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "subcategoryId must be a number",
			})
		}
		filter.SubcategoryID = &parsed
	}
	if raw := c.Query("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "active must be true or false",
			})
		}
		filter.Active = &parsed
	}

	products, total, err := h.service.List(filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "could not list products",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(products),
		"total":   total,
		"page":    filter.Page,
		"limit":   filter.Limit,
		"data":    products,
	})
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid product id",
		})
	}

	item, err := h.service.GetByID(productID)
	if err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "product not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "could not load product",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}
