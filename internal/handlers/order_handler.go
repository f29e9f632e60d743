package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, validate *validator.Validate) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validate,
	}
}

// RegisterRoutes registers the order routes. Every route needs an authenticated user; the
// listing, status and stats routes need an admin.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	orderRoutes := router.Group("/order", authRequired)
	orderRoutes.Post("/new", h.HandleCreateOrder)
	orderRoutes.Get("/me", h.HandleGetMyOrders)
	orderRoutes.Get("/stats/overview", middleware.AdminRequired(), h.HandleStats)
	orderRoutes.Get("/", middleware.AdminRequired(), h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Put("/:id/cancel", h.HandleCancelOrder)
	orderRoutes.Put("/:id/status", middleware.AdminRequired(), h.HandleUpdateOrderStatus)
	orderRoutes.Delete("/:id", h.HandleDeleteOrder)
}

// HandleCreateOrder places an order for the authenticated user.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req models.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return invalid(c, err)
	}

	order, err := h.service.CreateOrder(middleware.UserID(c), req)
	middleware.RecordOrderOperation("create", err == nil)
	if err != nil {
		return fail(c, "Could not create order", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"order":   order,
	})
}

// HandleGetMyOrders lists the authenticated user's orders.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetMyOrders(middleware.UserID(c))
	if err != nil {
		return fail(c, "Could not retrieve orders", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"orders":  orders,
	})
}

// HandleGetOrders lists every order.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders()
	if err != nil {
		return fail(c, "Could not retrieve orders", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"orders":  orders,
	})
}

// HandleGetOrderByID returns an order owned by the caller, or any order for an admin.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.Params("id"), middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		return fail(c, "Could not retrieve order", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"order":   order,
	})
}

// HandleCancelOrder cancels one of the caller's orders.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.service.CancelOrder(c.Params("id"), middleware.UserID(c))
	middleware.RecordOrderOperation("cancel", err == nil)
	if err != nil {
		return fail(c, "Could not cancel order", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order cancelled",
		"order":   order,
	})
}

// HandleDeleteOrder deletes one of the caller's finished orders.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	err := h.service.DeleteOrder(c.Params("id"), middleware.UserID(c))
	middleware.RecordOrderOperation("delete", err == nil)
	if err != nil {
		return fail(c, "Could not delete order", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order deleted",
	})
}

// HandleUpdateOrderStatus moves an order along its fulfillment lifecycle.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var updateData struct {
		Status models.OrderStatus `json:"status" validate:"required"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(updateData); err != nil {
		return invalid(c, err)
	}

	order, err := h.service.UpdateOrderStatus(c.Params("id"), updateData.Status)
	middleware.RecordOrderOperation("update_status", err == nil)
	if err != nil {
		return fail(c, "Could not update order status", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"order":   order,
	})
}

// HandleStats returns the admin dashboard overview.
func (h *OrderHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats()
	if err != nil {
		return fail(c, "Could not compute stats", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}
