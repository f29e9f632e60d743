package services

import (
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// ProductService handles the product catalog.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("product %s: %w", id, ErrProductNotFound)
	}
	return product, err
}

// CreateProduct adds a product to the catalog.
func (s *ProductService) CreateProduct(product *models.Product) error {
	return s.repo.Create(product)
}

// UpdateProduct replaces an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	err := s.repo.Update(product)
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("product %s: %w", product.ID, ErrProductNotFound)
	}
	return err
}

// DeleteProduct removes a product from the catalog.
func (s *ProductService) DeleteProduct(id string) error {
	err := s.repo.Delete(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("product %s: %w", id, ErrProductNotFound)
	}
	return err
}
