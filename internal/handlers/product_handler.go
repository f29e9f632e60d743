package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler serves the catalog. Reads are public; writes need an admin.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, validate *validator.Validate) *ProductHandler {
	return &ProductHandler{service: service, validate: validate}
}

// RegisterRoutes registers the product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	products := router.Group("/products")
	products.Get("/", h.HandleGetProducts)
	products.Get("/:id", h.HandleGetProduct)
	products.Post("/", authRequired, middleware.AdminRequired(), h.HandleCreateProduct)
	products.Put("/:id", authRequired, middleware.AdminRequired(), h.HandleUpdateProduct)
	products.Delete("/:id", authRequired, middleware.AdminRequired(), h.HandleDeleteProduct)
}

func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		return fail(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"))
	if err != nil {
		return fail(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return badBody(c, err)
	}
	product.ID = ""
	if err := h.validate.Struct(product); err != nil {
		return invalid(c, err)
	}
	if err := h.service.CreateProduct(&product); err != nil {
		return fail(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return badBody(c, err)
	}
	product.ID = c.Params("id")
	if err := h.validate.Struct(product); err != nil {
		return invalid(c, err)
	}
	if err := h.service.UpdateProduct(&product); err != nil {
		return fail(c, "Could not update product", err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.Params("id")); err != nil {
		return fail(c, "Could not delete product", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
