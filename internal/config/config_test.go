package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "usd", cfg.Currency)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("STRIPE_PUBLISHABLE_KEY", "pk_test_123")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.Equal(t, "pk_test_123", cfg.StripePublishableKey)
}
