package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ContactHandler accepts contact-form submissions.
type ContactHandler struct {
	service  *services.ContactService
	validate *validator.Validate
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(service *services.ContactService, validate *validator.Validate) *ContactHandler {
	return &ContactHandler{service: service, validate: validate}
}

// RegisterRoutes registers the contact route.
func (h *ContactHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/contact", h.HandleContact)
}

// HandleContact validates the form and sends the support and acknowledgement emails.
func (h *ContactHandler) HandleContact(c *fiber.Ctx) error {
	var req models.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return invalid(c, err)
	}

	if err := h.service.Submit(c.UserContext(), req); err != nil {
		return fail(c, "Failed to send message", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Message sent successfully",
	})
}
