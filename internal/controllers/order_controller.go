package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/middleware"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/models"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/services"
)

// OrderController handles HTTP requests for orders
type OrderController interface {
	// CreatePublicOrder registers a storefront order
	CreatePublicOrder(c *gin.Context)
	// ListOrders retrieves orders for the admin portal
	ListOrders(c *gin.Context)
	// GetOrder retrieves an order with its items and customer
	GetOrder(c *gin.Context)
	// CreateOrder registers an order from the admin portal
	CreateOrder(c *gin.Context)
	// UpdateStatus moves the order or payment status
	UpdateStatus(c *gin.Context)
}

type orderController struct {
	orders services.OrderService
}

// NewOrderController creates a new instance of OrderController
func NewOrderController(orders services.OrderService) *orderController {
	return &orderController{orders: orders}
}

// CreatePublicOrder godoc
// @Summary Create a storefront order
// @Description Create an order from the public shop; the customer is resolved by phone and prices are computed server side
// @Tags orders
// @Accept json
// @Produce json
// @Success 201 {object} models.Order
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/orders [post]
func (oc *orderController) CreatePublicOrder(ctx *gin.Context) {
	var req services.PublicOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	order, err := oc.orders.CreatePublicOrder(req)
	middleware.RecordOrderOperation("create_public", err == nil)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, order)
}

// ListOrders godoc
// @Summary List orders
// @Description Get up to 100 orders, newest first, optionally filtered by date range and status
// @Tags orders
// @Produce json
// @Param from query string false "Start date (RFC 3339)"
// @Param to query string false "End date (RFC 3339)"
// @Param status query string false "Order status"
// @Success 200 {array} models.Order
// @Security BearerAuth
// @Router /api/v1/admin/orders [get]
func (oc *orderController) ListOrders(ctx *gin.Context) {
	var filter services.OrderFilter

	if from := ctx.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid from date, expected RFC 3339"))
			return
		}
		filter.From = &t
	}
	if to := ctx.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid to date, expected RFC 3339"))
			return
		}
		filter.To = &t
	}
	if status := ctx.Query("status"); status != "" {
		s := models.OrderStatus(status)
		if !models.ValidOrderStatus(s) {
			ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid status filter"))
			return
		}
		filter.Status = s
	}

	orders, err := oc.orders.ListOrders(filter)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, orders)
}

func (oc *orderController) GetOrder(ctx *gin.Context) {
	order, err := oc.orders.GetOrder(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

// CreateOrder godoc
// @Summary Create an order from the admin portal
// @Description Register a sale for a known customer with full control over status, payment and totals
// @Tags orders
// @Accept json
// @Produce json
// @Success 201 {object} models.Order
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/orders [post]
func (oc *orderController) CreateOrder(ctx *gin.Context) {
	var req services.AdminOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	order, err := oc.orders.CreateAdminOrder(req)
	middleware.RecordOrderOperation("create_admin", err == nil)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, order)
}

// UpdateStatus godoc
// @Summary Update order status
// @Description Move the order status and/or payment status along their transition tables
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.Order
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/orders/{id}/status [patch]
func (oc *orderController) UpdateStatus(ctx *gin.Context) {
	var body struct {
		Status        *models.OrderStatus   `json:"status"`
		PaymentStatus *models.PaymentStatus `json:"payment_status"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err)
		return
	}

	order, err := oc.orders.UpdateStatus(ctx.Param("id"), services.StatusUpdate{
		Status:        body.Status,
		PaymentStatus: body.PaymentStatus,
	})
	middleware.RecordOrderOperation("update_status", err == nil)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}
