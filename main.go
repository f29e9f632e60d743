package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"storefront/internal/app"
	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/gateway"
	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/pkg/mailer"
	"storefront/pkg/rabbitmq"
)

const cartTTL = 30 * 24 * time.Hour

func main() {
	// --- Configuration ---
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not read .env: %v", err)
	}
	cfg := config.Load()

	// --- Database ---
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Cart storage ---
	var cartStorage cart.Storage = cart.NewMemoryStorage()
	redisStatus := "disabled"
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Printf("Warning: Redis unavailable at %s, carts are kept in memory: %v", cfg.RedisAddr, err)
		} else {
			cartStorage = cart.NewRedisStorage(rdb, cartTTL)
			redisStatus = "connected"
		}
	}

	// --- Mail ---
	var m mailer.Mailer = mailer.LogMailer{}
	if cfg.SMTPHost != "" {
		smtp, err := mailer.NewSMTPMailer(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
		if err != nil {
			log.Fatalf("Failed to initialize mailer: %v", err)
		}
		m = smtp
	}

	// --- RabbitMQ ---
	var publisher services.EventPublisher
	rabbitStatus := "disabled"
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, order events are not published: %v", err)
		} else {
			defer mqClient.Close()
			publisher = mqClient
			rabbitStatus = "connected"

			notifier := events.NewNotifier(m)
			log.Println("Starting RabbitMQ consumer for order events...")
			if err := mqClient.ConsumeOrderEvents(notifier.HandleDelivery); err != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", err)
			}
		}
	}

	// --- Services and HTTP ---
	svc := app.NewServices(db, app.Options{
		JWTSecret:            cfg.JWTSecret,
		StripePublishableKey: cfg.StripePublishableKey,
		Currency:             cfg.Currency,
		SupportEmail:         cfg.SupportEmail,
		CartStorage:          cartStorage,
		Publisher:            publisher,
		Gateway:              gateway.NewStripeGateway(cfg.StripeSecretKey, gateway.NewBackend(cfg.StripeAPIURL)),
		Mailer:               m,
	})
	if err := svc.Auth.EnsureAdmin(cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("Warning: could not create admin user: %v", err)
	}
	seedProducts(svc)

	server := app.New(svc, func() fiber.Map {
		return fiber.Map{"rabbitmq": rabbitStatus, "redis": redisStatus}
	})

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// seedProducts fills an empty catalog with a few demo products.
func seedProducts(s *app.Services) {
	existing, err := s.Products.GetAllProducts()
	if err != nil || len(existing) > 0 {
		return
	}

	products := []models.Product{
		{Name: "Canvas Tote", Description: "Heavy cotton tote bag", Price: decimal.RequireFromString("18.00"), Stock: 40, Category: "bags"},
		{Name: "Ceramic Mug", Description: "12oz stoneware mug", Price: decimal.RequireFromString("12.50"), Stock: 60, Category: "kitchen"},
		{Name: "Wool Beanie", Description: "Merino knit beanie", Price: decimal.RequireFromString("24.00"), Stock: 25, Category: "apparel"},
	}
	for i := range products {
		if err := s.Products.CreateProduct(&products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
		} else {
			log.Printf("Seeded product: %s (ID: %s)", products[i].Name, products[i].ID)
		}
	}
}
