package catalog

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/tienda-labs/ecommerce-backend/internal/category"
	"github.com/tienda-labs/ecommerce-backend/internal/product"
	"github.com/tienda-labs/ecommerce-backend/internal/subcategory"
	"github.com/tienda-labs/ecommerce-backend/internal/upload"
)

// Handler exposes the admin surface: every catalog mutation goes through
// here and therefore through the engine's integrity rules.
type Handler struct {
	engine *Engine
	images *upload.Store
}

func NewHandler(engine *Engine, images *upload.Store) *Handler {
	return &Handler{engine: engine, images: images}
}

func (h *Handler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Post("/categories", h.createCategory)
	admin.Put("/categories/:id", h.updateCategory)
	admin.Patch("/categories/:id/toggle", h.toggleCategory)
	admin.Delete("/categories/:id", h.deleteCategory)
	admin.Get("/categories/:id/stats", h.categoryStats)

	admin.Post("/subcategories", h.createSubcategory)
	admin.Put("/subcategories/:id", h.updateSubcategory)
	admin.Patch("/subcategories/:id/toggle", h.toggleSubcategory)
	admin.Delete("/subcategories/:id", h.deleteSubcategory)
	admin.Get("/subcategories/:id/stats", h.subcategoryStats)

	admin.Post("/products", h.createProduct)
	admin.Put("/products/:id", h.updateProduct)
	admin.Patch("/products/:id/toggle", h.toggleProduct)
	admin.Delete("/products/:id", h.deleteProduct)
	admin.Post("/products/:id/image", h.uploadProductImage)
}

type categoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (h *Handler) createCategory(c *fiber.Ctx) error {
	payload := new(categoryRequest)
	if err := c.BodyParser(payload); err != nil {
		return badBody(c, err)
	}
	if problems := category.ValidateName(payload.Name); len(problems) > 0 {
		return validationFailed(c, problems)
	}

	created, err := h.engine.CreateCategory(payload.Name, payload.Description)
	if err != nil {
		return h.writeError(c, err, "could not create category")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "category created",
		"data":    created,
	})
}

func (h *Handler) updateCategory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badID(c)
	}
	payload := new(CategoryUpdate)
	if err := c.BodyParser(payload); err != nil {
		return badBody(c, err)
	}
	if payload.Name != nil {
		if problems := category.ValidateName(*payload.Name); len(problems) > 0 {
			return validationFailed(c, problems)
		}
	}

	updated, cascade, err := h.engine.UpdateCategory(id, *payload)
	if err != nil {
		return h.writeError(c, err, "could not update category")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "category updated",
		"data":    updated,
		"cascade": cascade,
	})
}

func (h *Handler) toggleCategory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badID(c)
	}

	updated, cascade, err := h.engine.ToggleCategory(id)
	if err != nil {
		return h.writeError(c, err, "could not toggle category")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "category status updated",
		"data":    updated,
		"cascade": cascade,
	})
}

func (h *Handler) deleteCategory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badID(c)
	}

	if err := h.engine.DeleteCategory(id); err != nil {
		return h.writeError(c, err, "could not delete category")
	}

	return c.JSON(fiber.Map{"success": true, "message": "category deleted"})
}

func (h *Handler) categoryStats(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badID(c)
	}

	cat, stats, err := h.engine.CategoryStats(id)
	if err != nil {
		return h.writeError(c, err, "could not load category stats")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"category": cat,
			"stats":    stats,
		},
	})
}

type subcategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	CategoryID  int     `json:"categoryId"`
}

func (h *Handler) createSubcategory(c *fiber.Ctx) error {
	payload := new(subcategoryRequest)
	if err := c.BodyParser(payload); err != nil {
		return badBody(c, err)
	}
	problems := subcategory.ValidateName(payload.Name)
	if payload.CategoryID < 1 {
		problems = append(problems, "categoryId is required")
	}
	if len(problems) > 0 {
		return validationFailed(c, problems)
	}

	created, err := h.engine.CreateSubcategory(payload.Name, payload.Description, payload.CategoryID)
	if err != nil {
		return h.writeError(c, err, "could not create subcategory")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "subcategory created",
		"data":    created,
	})
}

func (h *Handler) updateSubcategory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badID(c)
	}
	payload := new(SubcategoryUpdate)
	if err := c.BodyParser(payload); err != nil {
		return badBody(c, err)
	}
	if payload.Name != nil {
		if problems := subcategory.ValidateName(*payload.Name); len(problems) > 0 {
			return validationFailed(c, problems)
		}
	}

	updated, cascade, err := h.engine.UpdateSubcategory(id, *payload)
	if err != nil {
		return h.writeError(c, err, "could not update subcategory")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "subcategory updated",
		"data":    updated,
		"cascade": cascade,
	})
}

func (h *Handler) toggleSubcategory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badID(c)
	}

	updated, cascade, err := h.engine.ToggleSubcategory(id)
	if err != nil {
		return h.writeError(c, err, "could not toggle subcategory")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "subcategory status updated",
		"data":    updated,
		"cascade": cascade,
	})
}

func (h *Handler) deleteSubcategory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badID(c)
	}

	if err := h.engine.DeleteSubcategory(id); err != nil {
		return h.writeError(c, err, "could not delete subcategory")
	}

	return c.JSON(fiber.Map{"success": true, "message": "subcategory deleted"})
}

func (h *Handler) subcategoryStats(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badID(c)
	}

	sc, stats, err := h.engine.SubcategoryStats(id)
	if err != nil {
		return h.writeError(c, err, "could not load subcategory stats")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"subcategory": sc,
			"stats":       stats,
		},
	})
}

type productRequest struct {
	Name          string   `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	Stock         *int     `json:"stock"`
	SubcategoryID int      `json:"subcategoryId"`
	CategoryID    int      `json:"categoryId"`
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return badBody(c, err)
	}

	p := product.Product{
		Name:          payload.Name,
		Description:   payload.Description,
		SubcategoryID: payload.SubcategoryID,
		CategoryID:    payload.CategoryID,
	}
	if payload.Price != nil {
		p.Price = *payload.Price
	}
	if payload.Stock != nil {
		p.Stock = *payload.Stock
	}
	if problems := product.Validate(p); len(problems) > 0 {
		return validationFailed(c, problems)
	}

	created, err := h.engine.CreateProduct(p)
	if err != nil {
		return h.writeError(c, err, "could not create product")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "product created",
		"data":    created,
	})
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badID(c)
	}
	payload := new(ProductUpdate)
	if err := c.BodyParser(payload); err != nil {
		return badBody(c, err)
	}

	updated, err := h.engine.UpdateProduct(id, *payload)
	if err != nil {
		return h.writeError(c, err, "could not update product")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "product updated",
		"data":    updated,
	})
}

func (h *Handler) toggleProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badID(c)
	}

	updated, err := h.engine.ToggleProduct(id)
	if err != nil {
		return h.writeError(c, err, "could not toggle product")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "product status updated",
		"data":    updated,
	})
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badID(c)
	}

	removed, err := h.engine.DeleteProduct(id)
	if err != nil {
		return h.writeError(c, err, "could not delete product")
	}
	if removed.Image != nil {
		h.images.Remove(*removed.Image)
	}

	return c.JSON(fiber.Map{"success": true, "message": "product deleted"})
}

func (h *Handler) uploadProductImage(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badID(c)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "image file is required",
		})
	}

	name, err := h.images.Save(file)
	if err != nil {
		switch err {
		case upload.ErrUnsupportedType:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "only jpg, png and gif images are accepted",
			})
		case upload.ErrTooLarge:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "image exceeds the size limit",
			})
		}
		return serverError(c, "could not store image", err)
	}

	updated, previous, err := h.engine.SetProductImage(id, name)
	if err != nil {
		h.images.Remove(name)
		return h.writeError(c, err, "could not attach image to product")
	}
	if previous != "" && previous != name {
		h.images.Remove(previous)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "product image updated",
		"data":    updated,
	})
}

// writeError maps engine and repository errors onto the HTTP surface.
func (h *Handler) writeError(c *fiber.Ctx, err error, fallback string) error {
	if vErr, ok := err.(*ValidationError); ok {
		return validationFailed(c, vErr.Problems)
	}
	if depErr, ok := err.(*DependentsError); ok {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": depErr.Error(),
		})
	}
	switch err {
	case category.ErrNotFound:
		return entityNotFound(c, "category")
	case subcategory.ErrNotFound:
		return entityNotFound(c, "subcategory")
	case product.ErrNotFound:
		return entityNotFound(c, "product")
	case category.ErrNameExists, subcategory.ErrNameExists:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "name already in use",
		})
	case ErrCategoryInactive, ErrSubcategoryInactive, ErrCategoryMismatch:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
	return serverError(c, fallback, err)
}

func paramID(c *fiber.Ctx) (int, error) {
	return strconv.Atoi(c.Params("id"))
}

func badID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "invalid id",
	})
}

func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "invalid request body",
		"error":   err.Error(),
	})
}

func validationFailed(c *fiber.Ctx, problems []string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "validation failed",
		"errors":  problems,
	})
}

func entityNotFound(c *fiber.Ctx, entity string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"success": false,
		"message": entity + " not found",
	})
}

func serverError(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": message,
		"error":   err.Error(),
	})
}
