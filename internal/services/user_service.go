package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/models"
	"gorm.io/gorm"
)

// UserInput registers an admin-portal account.
type UserInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// UserService manages admin-portal accounts.
type UserService interface {
	ListUsers() ([]models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	CreateUser(input UserInput) (*models.User, error)
}

type userService struct {
	db *gorm.DB
}

// NewUserService creates a new instance of UserService
func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func (s *userService) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "email = ?", strings.ToLower(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "user", ID: email}
		}
		return nil, err
	}
	return &user, nil
}

func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "user", ID: id}
		}
		return nil, err
	}
	return &user, nil
}

func (s *userService) CreateUser(input UserInput) (*models.User, error) {
	role := input.Role
	if role == "" {
		role = models.RoleStaff
	}
	if role != models.RoleSuperadmin && role != models.RoleAdmin && role != models.RoleStaff {
		return nil, &ValidationError{Message: "invalid role"}
	}
	email := strings.ToLower(input.Email)
	var existing models.User
	if err := s.db.First(&existing, "email = ?", email).Error; err == nil {
		return nil, &ConflictError{Message: "a user with that email already exists"}
	}
	user := models.User{
		ID:       uuid.NewString(),
		Email:    email,
		FullName: input.FullName,
		Role:     role,
		IsActive: true,
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
