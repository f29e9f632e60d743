// Package config reads server settings from the environment.
package config

import (
	"github.com/spf13/viper"
)

// Config holds every setting the server reads at startup.
type Config struct {
	AppPort string

	DatabaseDriver string
	DatabaseDSN    string

	JWTSecret string

	RabbitMQURL string

	RedisAddr     string
	RedisPassword string

	StripeSecretKey      string
	StripePublishableKey string
	StripeAPIURL         string
	Currency             string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	SupportEmail string

	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Load reads the configuration from environment variables, falling back to development defaults.
// An empty RABBITMQ_URL, REDIS_ADDR or SMTP_HOST disables that integration.
func Load() *Config {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "storefront.db")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_PUBLISHABLE_KEY", "")
	v.SetDefault("STRIPE_API_URL", "")
	v.SetDefault("CURRENCY", "usd")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("MAIL_FROM", "no-reply@storefront.local")
	v.SetDefault("SUPPORT_EMAIL", "support@storefront.local")
	v.SetDefault("ADMIN_USERNAME", "")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.AutomaticEnv()

	return &Config{
		AppPort:              v.GetString("APP_PORT"),
		DatabaseDriver:       v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:          v.GetString("DATABASE_DSN"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		RabbitMQURL:          v.GetString("RABBITMQ_URL"),
		RedisAddr:            v.GetString("REDIS_ADDR"),
		RedisPassword:        v.GetString("REDIS_PASSWORD"),
		StripeSecretKey:      v.GetString("STRIPE_SECRET_KEY"),
		StripePublishableKey: v.GetString("STRIPE_PUBLISHABLE_KEY"),
		StripeAPIURL:         v.GetString("STRIPE_API_URL"),
		Currency:             v.GetString("CURRENCY"),
		SMTPHost:             v.GetString("SMTP_HOST"),
		SMTPPort:             v.GetInt("SMTP_PORT"),
		SMTPUsername:         v.GetString("SMTP_USERNAME"),
		SMTPPassword:         v.GetString("SMTP_PASSWORD"),
		MailFrom:             v.GetString("MAIL_FROM"),
		SupportEmail:         v.GetString("SUPPORT_EMAIL"),
		AdminUsername:        v.GetString("ADMIN_USERNAME"),
		AdminEmail:           v.GetString("ADMIN_EMAIL"),
		AdminPassword:        v.GetString("ADMIN_PASSWORD"),
	}
}
