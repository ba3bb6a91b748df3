package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/services"
)

// UserController handles HTTP requests for admin-portal accounts
type UserController interface {
	// ListUsers retrieves all portal accounts
	ListUsers(c *gin.Context)
	// CreateUser registers a new portal account
	CreateUser(c *gin.Context)
}

type userController struct {
	users services.UserService
}

// NewUserController creates a new instance of UserController
func NewUserController(users services.UserService) *userController {
	return &userController{users: users}
}

func (uc *userController) ListUsers(ctx *gin.Context) {
	users, err := uc.users.ListUsers()
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, users)
}

func (uc *userController) CreateUser(ctx *gin.Context) {
	var input services.UserInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondBindError(ctx, err)
		return
	}

	user, err := uc.users.CreateUser(input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, user)
}
