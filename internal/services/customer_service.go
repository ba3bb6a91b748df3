package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/models"
	"gorm.io/gorm"
)

// CustomerInput is the payload for creating a customer from the admin
// portal.
type CustomerInput struct {
	Email    string `json:"email"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Notes    string `json:"notes"`
}

// CustomerService provides customer lookup and registration.
type CustomerService interface {
	// ListCustomers returns up to 50 customers, optionally filtered by a
	// case-insensitive match on email, name or phone.
	ListCustomers(query string) ([]models.Customer, error)
	// GetCustomerByID retrieves a single customer.
	GetCustomerByID(id string) (*models.Customer, error)
	// CreateCustomer registers a customer; duplicate emails conflict.
	CreateCustomer(input CustomerInput) (*models.Customer, error)
	// ResolveByPhone finds a customer by phone inside tx, refreshing
	// name and address on a match, or creates a new record. Used by the
	// public order flow.
	ResolveByPhone(tx *gorm.DB, fullName, phone, address string) (*models.Customer, error)
}

type customerService struct {
	db *gorm.DB
}

// NewCustomerService creates a new instance of CustomerService
func NewCustomerService(db *gorm.DB) CustomerService {
	return &customerService{db: db}
}

func (s *customerService) ListCustomers(query string) ([]models.Customer, error) {
	var customers []models.Customer
	q := s.db.Order("created_at DESC").Limit(50)
	if query != "" {
		like := "%" + strings.ToLower(query) + "%"
		q = q.Where(
			"LOWER(COALESCE(email, '')) LIKE ? OR LOWER(full_name) LIKE ? OR LOWER(phone) LIKE ?",
			like, like, like,
		)
	}
	if err := q.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *customerService) GetCustomerByID(id string) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "customer", ID: id}
		}
		return nil, err
	}
	return &customer, nil
}

func (s *customerService) CreateCustomer(input CustomerInput) (*models.Customer, error) {
	customer := models.Customer{
		ID:       uuid.NewString(),
		FullName: input.FullName,
		Phone:    input.Phone,
		Address:  input.Address,
		Notes:    input.Notes,
	}
	if input.Email != "" {
		email := strings.ToLower(input.Email)
		var existing models.Customer
		if err := s.db.First(&existing, "email = ?", email).Error; err == nil {
			return nil, &ConflictError{Message: "a customer with that email already exists"}
		}
		customer.Email = &email
	}
	if err := s.db.Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *customerService) ResolveByPhone(tx *gorm.DB, fullName, phone, address string) (*models.Customer, error) {
	var customer models.Customer
	err := tx.First(&customer, "phone = ?", phone).Error
	switch {
	case err == nil:
		// Repeat order: refresh the name, keep the old address when the
		// new request leaves it blank.
		updates := map[string]interface{}{"full_name": fullName}
		if address != "" {
			updates["address"] = address
		}
		if err := tx.Model(&customer).Updates(updates).Error; err != nil {
			return nil, err
		}
		customer.FullName = fullName
		if address != "" {
			customer.Address = address
		}
		return &customer, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		customer = models.Customer{
			ID:       uuid.NewString(),
			FullName: fullName,
			Phone:    phone,
			Address:  address,
		}
		if err := tx.Create(&customer).Error; err != nil {
			return nil, err
		}
		return &customer, nil
	default:
		return nil, err
	}
}
