package cart

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/tienda-labs/ecommerce-backend/internal/product"
	"github.com/tienda-labs/ecommerce-backend/internal/user"
)

type Handler struct {
	service *Service
}

type addItemRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/cart", h.listCart)
	app.Post("/api/cart", h.addItem)
	app.Put("/api/cart/:itemId", h.updateQuantity)
	app.Delete("/api/cart/:itemId", h.removeItem)
	app.Delete("/api/cart", h.clearCart)
}

func (h *Handler) listCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	items, total, err := h.service.List(userID)
	if err != nil {
		return serverError(c, "could not load cart", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(items),
		"total":   total,
		"data":    items,
	})
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	payload := new(addItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
			"error":   err.Error(),
		})
	}

	item, err := h.service.AddItem(userID, payload.ProductID, payload.Quantity)
	if err != nil {
		return h.writeCartError(c, err, "could not add item to cart")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "item added to cart",
		"data":    item,
	})
}

func (h *Handler) updateQuantity(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	itemID, err := strconv.Atoi(c.Params("itemId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid cart item id",
		})
	}

	payload := new(updateQuantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
			"error":   err.Error(),
		})
	}

	item, err := h.service.UpdateQuantity(userID, itemID, payload.Quantity)
	if err != nil {
		return h.writeCartError(c, err, "could not update cart item")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "cart item updated",
		"data":    item,
	})
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	itemID, err := strconv.Atoi(c.Params("itemId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid cart item id",
		})
	}

	if err := h.service.RemoveItem(userID, itemID); err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "cart item not found",
			})
		}
		return serverError(c, "could not remove cart item", err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "item removed from cart"})
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.service.Clear(userID); err != nil {
		return serverError(c, "could not clear cart", err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "cart cleared"})
}

func (h *Handler) writeCartError(c *fiber.Ctx, err error, fallback string) error {
	if stockErr, ok := err.(*product.InsufficientStockError); ok {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": stockErr.Error(),
		})
	}
	switch err {
	case ErrInvalidQuantity:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "quantity must be at least 1",
		})
	case ErrProductInactive:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "product is not available",
		})
	case ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "cart item not found",
		})
	case product.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "product not found",
		})
	}
	return serverError(c, fallback, err)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "unauthorized",
	})
}

func serverError(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": message,
		"error":   err.Error(),
	})
}
