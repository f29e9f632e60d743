package handlers

import (
	"storefront/internal/cart"
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler exposes the authenticated user's server-side cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, validate *validator.Validate) *CartHandler {
	return &CartHandler{service: service, validate: validate}
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	cartRoutes := router.Group("/cart", authRequired)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items/:id", h.HandleSetQuantity)
	cartRoutes.Delete("/items/:id", h.HandleRemoveItem)
}

// AddCartItemRequest is the body of POST /cart/items.
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// SetCartQuantityRequest is the body of PUT /cart/items/:id.
type SetCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func cartBody(store *cart.Store) fiber.Map {
	return fiber.Map{
		"items":   store.Items(),
		"count":   store.Count(),
		"summary": store.Summary(),
	}
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	store, err := h.service.Get(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return fail(c, "Could not load cart", err)
	}
	return c.JSON(cartBody(store))
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return invalid(c, err)
	}

	store, err := h.service.AddItem(c.UserContext(), middleware.UserID(c), req.ProductID, req.Quantity)
	middleware.RecordOrderOperation("cart_add", err == nil)
	if err != nil {
		return fail(c, "Could not add item to cart", err)
	}
	return c.JSON(cartBody(store))
}

func (h *CartHandler) HandleSetQuantity(c *fiber.Ctx) error {
	var req SetCartQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	store, err := h.service.SetQuantity(c.UserContext(), middleware.UserID(c), c.Params("id"), req.Quantity)
	if err != nil {
		return fail(c, "Could not update cart", err)
	}
	return c.JSON(cartBody(store))
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	store, err := h.service.RemoveItem(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return fail(c, "Could not update cart", err)
	}
	return c.JSON(cartBody(store))
}

func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.service.Clear(c.UserContext(), middleware.UserID(c)); err != nil {
		return fail(c, "Could not clear cart", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
