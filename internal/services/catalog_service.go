package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/models"
	"gorm.io/gorm"
)

// ProductInput is the payload for creating or updating a product. Pointer
// fields distinguish "not provided" from zero values on updates.
type ProductInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceCLP    *int64  `json:"price_clp"`
	StockQty    *int64  `json:"stock_qty"`
	IsActive    *bool   `json:"is_active"`
}

// VariantInput is the payload for creating or updating a variant.
type VariantInput struct {
	Name             *string `json:"name"`
	PriceOverrideCLP *int64  `json:"price_override_clp"`
	StockQty         *int64  `json:"stock_qty"`
	IsActive         *bool   `json:"is_active"`
	SortOrder        *int    `json:"sort_order"`
}

// ToppingInput is the payload for creating or updating a topping.
type ToppingInput struct {
	Name     *string `json:"name"`
	PriceCLP *int64  `json:"price_clp"`
	Type     *string `json:"type"`
}

// CatalogService manages products, variants and toppings.
type CatalogService interface {
	// ListProducts returns the catalog; activeOnly restricts it to the
	// public storefront view.
	ListProducts(activeOnly bool) ([]models.Product, error)
	// GetProduct retrieves a product with its variants and toppings.
	GetProduct(id string) (*models.Product, error)
	// CreateProduct registers a product with a unique slug.
	CreateProduct(input ProductInput) (*models.Product, error)
	// UpdateProduct patches the provided fields of a product.
	UpdateProduct(id string, input ProductInput) (*models.Product, error)
	// DeleteProduct removes a product without dependent order items.
	DeleteProduct(id string) error

	CreateVariant(productID string, input VariantInput) (*models.ProductVariant, error)
	UpdateVariant(id string, input VariantInput) (*models.ProductVariant, error)
	DeleteVariant(id string) error

	CreateTopping(productID string, input ToppingInput) (*models.ProductTopping, error)
	UpdateTopping(id string, input ToppingInput) (*models.ProductTopping, error)
	DeleteTopping(id string) error
}

type catalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(db *gorm.DB) CatalogService {
	return &catalogService{db: db}
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases, strips non-alphanumerics and trims to 80 chars.
func slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 80 {
		slug = slug[:80]
	}
	return slug
}

// uniqueSlug appends a short random suffix until the slug is free. Ten
// attempts of 2 random bytes make a collision practically impossible.
func (s *catalogService) uniqueSlug(name, excludeID string) string {
	base := slugify(name)
	if base == "" {
		base = "producto"
	}
	slug := base
	for i := 0; i < 10; i++ {
		var count int64
		q := s.db.Model(&models.Product{}).Where("slug = ?", slug)
		if excludeID != "" {
			q = q.Where("id <> ?", excludeID)
		}
		q.Count(&count)
		if count == 0 {
			break
		}
		suffix := make([]byte, 2)
		rand.Read(suffix)
		slug = base + "-" + hex.EncodeToString(suffix)
	}
	return slug
}

func (s *catalogService) ListProducts(activeOnly bool) ([]models.Product, error) {
	var products []models.Product
	q := s.db.Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Preload("Toppings").Order("created_at DESC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *catalogService) GetProduct(id string) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Preload("Toppings").First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "product", ID: id}
		}
		return nil, err
	}
	return &product, nil
}

func (s *catalogService) CreateProduct(input ProductInput) (*models.Product, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, &ValidationError{Message: "name is required"}
	}
	if input.PriceCLP == nil || *input.PriceCLP < 0 {
		return nil, &ValidationError{Message: "price_clp must be a non-negative integer"}
	}
	product := models.Product{
		ID:       uuid.NewString(),
		Name:     *input.Name,
		Slug:     s.uniqueSlug(*input.Name, ""),
		PriceCLP: *input.PriceCLP,
		IsActive: true,
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.StockQty != nil {
		if *input.StockQty < 0 {
			return nil, &ValidationError{Message: "stock_qty must be a non-negative integer"}
		}
		product.StockQty = *input.StockQty
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := s.db.Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *catalogService) UpdateProduct(id string, input ProductInput) (*models.Product, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, &ValidationError{Message: "name cannot be empty"}
		}
		updates["name"] = *input.Name
		updates["slug"] = s.uniqueSlug(*input.Name, id)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.PriceCLP != nil {
		if *input.PriceCLP < 0 {
			return nil, &ValidationError{Message: "price_clp must be a non-negative integer"}
		}
		updates["price_clp"] = *input.PriceCLP
	}
	if input.StockQty != nil {
		if *input.StockQty < 0 {
			return nil, &ValidationError{Message: "stock_qty must be a non-negative integer"}
		}
		updates["stock_qty"] = *input.StockQty
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return nil, &ValidationError{Message: "nothing to update"}
	}
	if err := s.db.Model(product).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetProduct(id)
}

func (s *catalogService) DeleteProduct(id string) error {
	if _, err := s.GetProduct(id); err != nil {
		return err
	}
	var dependents int64
	if err := s.db.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&dependents).Error; err != nil {
		return err
	}
	if dependents > 0 {
		return &ConflictError{Message: "product has order history; deactivate it instead of deleting"}
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductTopping{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	})
}

func (s *catalogService) CreateVariant(productID string, input VariantInput) (*models.ProductVariant, error) {
	if _, err := s.GetProduct(productID); err != nil {
		return nil, err
	}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, &ValidationError{Message: "name is required"}
	}
	variant := models.ProductVariant{
		ID:               uuid.NewString(),
		ProductID:        productID,
		Name:             *input.Name,
		PriceOverrideCLP: input.PriceOverrideCLP,
		IsActive:         true,
	}
	if input.StockQty != nil {
		if *input.StockQty < 0 {
			return nil, &ValidationError{Message: "stock_qty must be a non-negative integer"}
		}
		variant.StockQty = *input.StockQty
	}
	if input.IsActive != nil {
		variant.IsActive = *input.IsActive
	}
	if input.SortOrder != nil {
		variant.SortOrder = *input.SortOrder
	}
	if err := s.db.Create(&variant).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (s *catalogService) UpdateVariant(id string, input VariantInput) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := s.db.First(&variant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "variant", ID: id}
		}
		return nil, err
	}
	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.PriceOverrideCLP != nil {
		updates["price_override_clp"] = *input.PriceOverrideCLP
	}
	if input.StockQty != nil {
		if *input.StockQty < 0 {
			return nil, &ValidationError{Message: "stock_qty must be a non-negative integer"}
		}
		updates["stock_qty"] = *input.StockQty
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.SortOrder != nil {
		updates["sort_order"] = *input.SortOrder
	}
	if len(updates) == 0 {
		return nil, &ValidationError{Message: "nothing to update"}
	}
	if err := s.db.Model(&variant).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (s *catalogService) DeleteVariant(id string) error {
	var dependents int64
	if err := s.db.Model(&models.OrderItem{}).Where("variant_id = ?", id).Count(&dependents).Error; err != nil {
		return err
	}
	if dependents > 0 {
		return &ConflictError{Message: "variant has order history; deactivate it instead of deleting"}
	}
	result := s.db.Delete(&models.ProductVariant{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Entity: "variant", ID: id}
	}
	return nil
}

func (s *catalogService) CreateTopping(productID string, input ToppingInput) (*models.ProductTopping, error) {
	if _, err := s.GetProduct(productID); err != nil {
		return nil, err
	}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, &ValidationError{Message: "name is required"}
	}
	if input.PriceCLP == nil || *input.PriceCLP < 0 {
		return nil, &ValidationError{Message: "price_clp must be a non-negative integer"}
	}
	topping := models.ProductTopping{
		ID:        uuid.NewString(),
		ProductID: productID,
		Name:      *input.Name,
		PriceCLP:  *input.PriceCLP,
	}
	if input.Type != nil {
		topping.Type = *input.Type
	}
	if err := s.db.Create(&topping).Error; err != nil {
		return nil, err
	}
	return &topping, nil
}

func (s *catalogService) UpdateTopping(id string, input ToppingInput) (*models.ProductTopping, error) {
	var topping models.ProductTopping
	if err := s.db.First(&topping, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "topping", ID: id}
		}
		return nil, err
	}
	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.PriceCLP != nil {
		if *input.PriceCLP < 0 {
			return nil, &ValidationError{Message: "price_clp must be a non-negative integer"}
		}
		updates["price_clp"] = *input.PriceCLP
	}
	if input.Type != nil {
		updates["type"] = *input.Type
	}
	if len(updates) == 0 {
		return nil, &ValidationError{Message: "nothing to update"}
	}
	if err := s.db.Model(&topping).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &topping, nil
}

func (s *catalogService) DeleteTopping(id string) error {
	result := s.db.Delete(&models.ProductTopping{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Entity: "topping", ID: id}
	}
	return nil
}
