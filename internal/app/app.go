// Package app assembles the HTTP server from its services.
package app

import (
	"time"

	"storefront/internal/cart"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/validation"
	"storefront/pkg/mailer"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Options are the external collaborators the services are built on.
type Options struct {
	JWTSecret            string
	StripePublishableKey string
	Currency             string
	SupportEmail         string

	CartStorage cart.Storage
	Publisher   services.EventPublisher
	Gateway     services.PaymentGateway
	Mailer      mailer.Mailer
}

// Services holds every service the handlers use.
type Services struct {
	Auth     *services.AuthService
	Products *services.ProductService
	Orders   *services.OrderService
	Payments *services.PaymentService
	Contact  *services.ContactService
	Cart     *services.CartService
}

// NewServices builds the services over GORM repositories.
func NewServices(db *gorm.DB, opts Options) *Services {
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	storage := opts.CartStorage
	if storage == nil {
		storage = cart.NewMemoryStorage()
	}
	m := opts.Mailer
	if m == nil {
		m = mailer.LogMailer{}
	}

	orders := services.NewOrderService(orderRepo, productRepo, userRepo, opts.Publisher)
	return &Services{
		Auth:     services.NewAuthService(userRepo, opts.JWTSecret),
		Products: services.NewProductService(productRepo),
		Orders:   orders,
		Payments: services.NewPaymentService(orders, opts.Gateway, opts.StripePublishableKey, opts.Currency),
		Contact:  services.NewContactService(m, opts.SupportEmail),
		Cart:     services.NewCartService(storage, productRepo),
	}
}

// New returns the Fiber app with every route mounted under /api/v1. health, when set, adds the
// state of optional integrations to /health.
func New(s *Services, health func() fiber.Map) *fiber.App {
	app := fiber.New()

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(middleware.Metrics())

	validate := validation.New()
	authRequired := middleware.AuthRequired(s.Auth)

	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(s.Auth, validate).RegisterRoutes(apiV1)
	handlers.NewProductHandler(s.Products, validate).RegisterRoutes(apiV1, authRequired)
	handlers.NewCartHandler(s.Cart, validate).RegisterRoutes(apiV1, authRequired)
	handlers.NewOrderHandler(s.Orders, validate).RegisterRoutes(apiV1, authRequired)
	handlers.NewPaymentHandler(s.Payments, validate).RegisterRoutes(apiV1, authRequired)
	handlers.NewContactHandler(s.Contact, validate).RegisterRoutes(apiV1)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		}
		if health != nil {
			for k, v := range health() {
				body[k] = v
			}
		}
		return c.Status(fiber.StatusOK).JSON(body)
	})

	return app
}
