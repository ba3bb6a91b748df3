package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/middleware"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/models"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/services"
)

// CakeController handles HTTP requests for the custom cake configurator
type CakeController interface {
	// GetBuilderConfig returns the configurator steps for the storefront
	GetBuilderConfig(c *gin.Context)
	// CreateCakeOrder registers a custom cake request
	CreateCakeOrder(c *gin.Context)

	ListCategories(c *gin.Context)
	UpdateCategory(c *gin.Context)
	CreateOption(c *gin.Context)
	UpdateOption(c *gin.Context)
	DeleteOption(c *gin.Context)

	ListCakeOrders(c *gin.Context)
	UpdateCakeOrderStatus(c *gin.Context)
}

type cakeController struct {
	cakes services.CakeService
}

// NewCakeController creates a new instance of CakeController
func NewCakeController(cakes services.CakeService) *cakeController {
	return &cakeController{cakes: cakes}
}

// GetBuilderConfig godoc
// @Summary Get the cake configurator steps
// @Description Get active categories with their active options, sorted for display
// @Tags cakes
// @Produce json
// @Success 200 {array} models.CakeCategory
// @Router /api/v1/public/cakes/builder [get]
func (cc *cakeController) GetBuilderConfig(ctx *gin.Context) {
	categories, err := cc.cakes.BuilderConfig()
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, categories)
}

// CreateCakeOrder godoc
// @Summary Create a custom cake order
// @Description Price and register a custom cake; total is base plus selected extras, deposit is half the total rounded up
// @Tags cakes
// @Accept json
// @Produce json
// @Success 201 {object} models.CakeOrder
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/cakes/orders [post]
func (cc *cakeController) CreateCakeOrder(ctx *gin.Context) {
	var req services.CakeOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	order, err := cc.cakes.CreateCakeOrder(req)
	middleware.RecordOrderOperation("create_cake", err == nil)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, order)
}

func (cc *cakeController) ListCategories(ctx *gin.Context) {
	categories, err := cc.cakes.ListCategories()
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, categories)
}

func (cc *cakeController) UpdateCategory(ctx *gin.Context) {
	var input services.CakeCategoryInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondBindError(ctx, err)
		return
	}

	category, err := cc.cakes.UpdateCategory(ctx.Param("id"), input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, category)
}

func (cc *cakeController) CreateOption(ctx *gin.Context) {
	var input services.CakeOptionInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondBindError(ctx, err)
		return
	}

	option, err := cc.cakes.CreateOption(input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, option)
}

func (cc *cakeController) UpdateOption(ctx *gin.Context) {
	var input services.CakeOptionInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondBindError(ctx, err)
		return
	}

	option, err := cc.cakes.UpdateOption(ctx.Param("id"), input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, option)
}

func (cc *cakeController) DeleteOption(ctx *gin.Context) {
	if err := cc.cakes.DeleteOption(ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusNoContent, nil)
}

func (cc *cakeController) ListCakeOrders(ctx *gin.Context) {
	var status models.OrderStatus
	if s := ctx.Query("status"); s != "" {
		status = models.OrderStatus(s)
		if !models.ValidOrderStatus(status) {
			ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid status filter"))
			return
		}
	}

	orders, err := cc.cakes.ListCakeOrders(status)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, orders)
}

func (cc *cakeController) UpdateCakeOrderStatus(ctx *gin.Context) {
	var body struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondBindError(ctx, err)
		return
	}

	order, err := cc.cakes.UpdateCakeOrderStatus(ctx.Param("id"), body.Status)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, order)
}
