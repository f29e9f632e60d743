package repositories

import (
	"storefront/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	// AdjustStock adds delta (which may be negative) to a product's stock.
	AdjustStock(id string, delta int) error
	Count() (int64, error)
}
