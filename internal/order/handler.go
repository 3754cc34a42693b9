package order

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/tienda-labs/ecommerce-backend/internal/product"
	"github.com/tienda-labs/ecommerce-backend/internal/user"
)

type Handler struct {
	service ServiceInterface
}

type checkoutRequest struct {
	ShippingAddress string  `json:"shippingAddress"`
	Phone           string  `json:"phone"`
	Notes           *string `json:"notes,omitempty"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/orders", h.checkout)
	app.Get("/api/orders", h.listOrders)
	app.Get("/api/orders/:id", h.getOrder)
	app.Post("/api/orders/:id/cancel", h.cancelOrder)
	app.Delete("/api/orders/:id", h.deleteOrder)
}

func (h *Handler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Patch("/orders/:id/status", h.changeStatus)
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	payload := new(checkoutRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
			"error":   err.Error(),
		})
	}

	ord, problems, err := h.service.Checkout(userID, payload.ShippingAddress, payload.Phone, payload.Notes)
	if err != nil {
		if stockErr, ok := err.(*product.InsufficientStockError); ok {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": stockErr.Error(),
			})
		}
		if err == ErrEmptyCart {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "cart is empty",
			})
		}
		return serverError(c, "could not create order", err)
	}
	if len(problems) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "validation failed",
			"errors":  problems,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "order created",
		"data":    ord,
	})
}

func (h *Handler) listOrders(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}

	var status *Status
	if raw := c.Query("status"); raw != "" {
		parsed := Status(raw)
		if !parsed.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "unknown status " + raw,
			})
		}
		status = &parsed
	}

	orders, err := h.service.ListByUser(userID, status)
	if err != nil {
		return serverError(c, "could not list orders", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(orders),
		"data":    orders,
	})
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return badID(c)
	}

	ord, err := h.service.GetForUser(orderID, userID, user.IsAdminCtx(c))
	if err != nil {
		if err == ErrNotFound {
			return notFound(c)
		}
		return serverError(c, "could not load order", err)
	}

	return c.JSON(fiber.Map{"success": true, "data": ord})
}

func (h *Handler) cancelOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return unauthorized(c)
	}
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return badID(c)
	}

	ord, err := h.service.Cancel(orderID, userID, user.IsAdminCtx(c))
	if err != nil {
		switch err {
		case ErrNotFound:
			return notFound(c)
		case ErrNotCancellable:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "order can no longer be cancelled",
			})
		}
		return serverError(c, "could not cancel order", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "order cancelled",
		"data":    ord,
	})
}

func (h *Handler) deleteOrder(c *fiber.Ctx) error {
	if _, err := user.GetUserIDFromCtx(c); err != nil {
		return unauthorized(c)
	}
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return badID(c)
	}

	// always ErrDeleteNotAllowed; orders are cancelled, never erased
	if err := h.service.Delete(orderID); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "orders cannot be deleted, cancel instead",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) changeStatus(c *fiber.Ctx) error {
	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return badID(c)
	}

	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid request body",
			"error":   err.Error(),
		})
	}

	ord, err := h.service.ChangeStatus(orderID, Status(payload.Status))
	if err != nil {
		switch err {
		case ErrNotFound:
			return notFound(c)
		case ErrInvalidStatus:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "unknown status " + payload.Status,
			})
		case ErrInvalidTransition:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "cannot transition to " + payload.Status,
			})
		}
		return serverError(c, "could not update order status", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "order status updated",
		"data":    ord,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "unauthorized",
	})
}

func badID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "invalid order id",
	})
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"success": false,
		"message": "order not found",
	})
}

func serverError(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": message,
		"error":   err.Error(),
	})
}
