package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/models"
	"gorm.io/gorm"
)

// CakeOrderRequest is a custom cake request from the public configurator.
// Option ids are optional; prices are computed server side from the
// selected option rows.
type CakeOrderRequest struct {
	CustomerName       string  `json:"customer_name" binding:"required"`
	CustomerPhone      string  `json:"customer_phone" binding:"required"`
	CustomerEmail      string  `json:"customer_email"`
	CustomerAddress    string  `json:"customer_address"`
	SizeOptionID       *string `json:"size_option_id"`
	LayersOptionID     *string `json:"layers_option_id"`
	SpongeOptionID     *string `json:"sponge_option_id"`
	FillingOptionID    *string `json:"filling_option_id"`
	DecorationOptionID *string `json:"decoration_option_id"`
	Notes              string  `json:"notes"`
}

// CakeCategoryInput patches a configurator category.
type CakeCategoryInput struct {
	Label     *string `json:"label"`
	SortOrder *int    `json:"sort_order"`
	IsActive  *bool   `json:"is_active"`
}

// CakeOptionInput creates or patches a configurator option.
type CakeOptionInput struct {
	CategoryID    string  `json:"category_id"`
	Label         *string `json:"label"`
	Description   *string `json:"description"`
	ExtraPriceCLP *int64  `json:"extra_price_clp"`
	IsDefault     *bool   `json:"is_default"`
	DiameterCM    *int    `json:"diameter_cm"`
	IsActive      *bool   `json:"is_active"`
	SortOrder     *int    `json:"sort_order"`
}

// CakeService runs the custom cake configurator: builder config for the
// storefront, cake order intake, and admin management of both.
type CakeService interface {
	// BuilderConfig returns active categories with their active options,
	// sorted for display.
	BuilderConfig() ([]models.CakeCategory, error)
	// CreateCakeOrder prices and registers a custom cake request:
	// total = base + selected extras, deposit = half the total rounded up.
	CreateCakeOrder(req CakeOrderRequest) (*models.CakeOrder, error)

	ListCategories() ([]models.CakeCategory, error)
	UpdateCategory(id string, input CakeCategoryInput) (*models.CakeCategory, error)
	CreateOption(input CakeOptionInput) (*models.CakeOption, error)
	UpdateOption(id string, input CakeOptionInput) (*models.CakeOption, error)
	DeleteOption(id string) error

	ListCakeOrders(status models.OrderStatus) ([]models.CakeOrder, error)
	UpdateCakeOrderStatus(id string, status models.OrderStatus) (*models.CakeOrder, error)
}

type cakeService struct {
	db           *gorm.DB
	basePriceCLP int64
}

// NewCakeService creates a new instance of CakeService. basePriceCLP is
// the starting price of every custom cake before extras.
func NewCakeService(db *gorm.DB, basePriceCLP int64) CakeService {
	return &cakeService{db: db, basePriceCLP: basePriceCLP}
}

func (s *cakeService) BuilderConfig() ([]models.CakeCategory, error) {
	var categories []models.CakeCategory
	err := s.db.Where("is_active = ?", true).
		Order("sort_order ASC").
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("sort_order ASC")
		}).
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// resolveOption loads one selected option; nil id means the step was
// skipped.
func (s *cakeService) resolveOption(id *string) (*models.CakeOption, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	var option models.CakeOption
	if err := s.db.First(&option, "id = ?", *id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "cake option", ID: *id}
		}
		return nil, err
	}
	if !option.IsActive {
		return nil, &InactiveEntityError{Entity: "cake option", Name: option.Label}
	}
	return &option, nil
}

func (s *cakeService) CreateCakeOrder(req CakeOrderRequest) (*models.CakeOrder, error) {
	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.CustomerPhone) == "" {
		return nil, &ValidationError{Message: "customer_name and customer_phone are required"}
	}

	var extras int64
	selections := []*string{
		req.SizeOptionID, req.LayersOptionID, req.SpongeOptionID,
		req.FillingOptionID, req.DecorationOptionID,
	}
	for _, id := range selections {
		option, err := s.resolveOption(id)
		if err != nil {
			return nil, err
		}
		if option != nil {
			extras += option.ExtraPriceCLP
		}
	}

	total := s.basePriceCLP + extras
	// Deposit is half the total, rounded up to a whole peso.
	deposit := (total + 1) / 2

	order := models.CakeOrder{
		ID:                 uuid.NewString(),
		OrderNumber:        orderCode("CAKE"),
		CustomerName:       req.CustomerName,
		CustomerPhone:      req.CustomerPhone,
		CustomerEmail:      strings.ToLower(req.CustomerEmail),
		CustomerAddress:    req.CustomerAddress,
		SizeOptionID:       req.SizeOptionID,
		LayersOptionID:     req.LayersOptionID,
		SpongeOptionID:     req.SpongeOptionID,
		FillingOptionID:    req.FillingOptionID,
		DecorationOptionID: req.DecorationOptionID,
		BasePriceCLP:       s.basePriceCLP,
		ExtrasPriceCLP:     extras,
		TotalPriceCLP:      total,
		DepositCLP:         deposit,
		Notes:              req.Notes,
		Status:             models.OrderStatusPendingPayment,
	}
	if err := s.db.Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *cakeService) ListCategories() ([]models.CakeCategory, error) {
	var categories []models.CakeCategory
	err := s.db.Order("sort_order ASC").
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *cakeService) UpdateCategory(id string, input CakeCategoryInput) (*models.CakeCategory, error) {
	var category models.CakeCategory
	if err := s.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "cake category", ID: id}
		}
		return nil, err
	}
	updates := map[string]interface{}{}
	if input.Label != nil {
		updates["label"] = *input.Label
	}
	if input.SortOrder != nil {
		updates["sort_order"] = *input.SortOrder
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return nil, &ValidationError{Message: "nothing to update"}
	}
	if err := s.db.Model(&category).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *cakeService) CreateOption(input CakeOptionInput) (*models.CakeOption, error) {
	if input.CategoryID == "" {
		return nil, &ValidationError{Message: "category_id is required"}
	}
	if input.Label == nil || strings.TrimSpace(*input.Label) == "" {
		return nil, &ValidationError{Message: "label is required"}
	}
	var category models.CakeCategory
	if err := s.db.First(&category, "id = ?", input.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "cake category", ID: input.CategoryID}
		}
		return nil, err
	}
	option := models.CakeOption{
		ID:         uuid.NewString(),
		CategoryID: input.CategoryID,
		Label:      *input.Label,
		DiameterCM: input.DiameterCM,
		IsActive:   true,
	}
	if input.Description != nil {
		option.Description = *input.Description
	}
	if input.ExtraPriceCLP != nil {
		if *input.ExtraPriceCLP < 0 {
			return nil, &ValidationError{Message: "extra_price_clp must be non-negative"}
		}
		option.ExtraPriceCLP = *input.ExtraPriceCLP
	}
	if input.IsDefault != nil {
		option.IsDefault = *input.IsDefault
	}
	if input.SortOrder != nil {
		option.SortOrder = *input.SortOrder
	}
	if err := s.db.Create(&option).Error; err != nil {
		return nil, err
	}
	return &option, nil
}

func (s *cakeService) UpdateOption(id string, input CakeOptionInput) (*models.CakeOption, error) {
	var option models.CakeOption
	if err := s.db.First(&option, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "cake option", ID: id}
		}
		return nil, err
	}
	updates := map[string]interface{}{}
	if input.Label != nil {
		updates["label"] = *input.Label
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.ExtraPriceCLP != nil {
		if *input.ExtraPriceCLP < 0 {
			return nil, &ValidationError{Message: "extra_price_clp must be non-negative"}
		}
		updates["extra_price_clp"] = *input.ExtraPriceCLP
	}
	if input.IsDefault != nil {
		updates["is_default"] = *input.IsDefault
	}
	if input.DiameterCM != nil {
		updates["diameter_cm"] = *input.DiameterCM
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
	if err := s.db.Model(&option).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &option, nil
}

func (s *cakeService) DeleteOption(id string) error {
	result := s.db.Delete(&models.CakeOption{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Entity: "cake option", ID: id}
	}
	return nil
}

func (s *cakeService) ListCakeOrders(status models.OrderStatus) ([]models.CakeOrder, error) {
	var orders []models.CakeOrder
	q := s.db.Order("created_at DESC").Limit(100)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *cakeService) UpdateCakeOrderStatus(id string, status models.OrderStatus) (*models.CakeOrder, error) {
	if !models.ValidOrderStatus(status) {
		return nil, &ValidationError{Message: "invalid status"}
	}
	var order models.CakeOrder
	if err := s.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "cake order", ID: id}
		}
		return nil, err
	}
	if err := s.db.Model(&order).Update("status", status).Error; err != nil {
		return nil, err
	}
	order.Status = status
	return &order, nil
}
