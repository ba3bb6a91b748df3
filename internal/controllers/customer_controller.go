package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/services"
)

// CustomerController handles HTTP requests for the customer directory
type CustomerController interface {
	// ListCustomers searches customers by email, name or phone
	ListCustomers(c *gin.Context)
	// GetCustomer retrieves a customer by its ID
	GetCustomer(c *gin.Context)
	// CreateCustomer registers a new customer
	CreateCustomer(c *gin.Context)
}

type customerController struct {
	customers services.CustomerService
}

// NewCustomerController creates a new instance of CustomerController
func NewCustomerController(customers services.CustomerService) *customerController {
	return &customerController{customers: customers}
}

// ListCustomers godoc
// @Summary List customers
// @Description Search up to 50 customers by email, name or phone
// @Tags customers
// @Produce json
// @Param q query string false "Search term"
// @Success 200 {array} models.Customer
// @Security BearerAuth
// @Router /api/v1/admin/customers [get]
func (cc *customerController) ListCustomers(ctx *gin.Context) {
	customers, err := cc.customers.ListCustomers(ctx.Query("q"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, customers)
}

func (cc *customerController) GetCustomer(ctx *gin.Context) {
	customer, err := cc.customers.GetCustomerByID(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, customer)
}

func (cc *customerController) CreateCustomer(ctx *gin.Context) {
	var input services.CustomerInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondBindError(ctx, err)
		return
	}

	customer, err := cc.customers.CreateCustomer(input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, customer)
}
