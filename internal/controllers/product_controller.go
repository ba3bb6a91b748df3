package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/services"
)

// ProductController handles HTTP requests for the product catalog
type ProductController interface {
	// ListPublicProducts retrieves the active catalog for the storefront
	ListPublicProducts(c *gin.Context)
	// GetProduct retrieves a product with its variants and toppings
	GetProduct(c *gin.Context)
	// ListProducts retrieves the full catalog for the admin portal
	ListProducts(c *gin.Context)
	// CreateProduct creates a new product
	CreateProduct(c *gin.Context)
	// UpdateProduct updates an existing product
	UpdateProduct(c *gin.Context)
	// DeleteProduct deletes a product
	DeleteProduct(c *gin.Context)

	CreateVariant(c *gin.Context)
	UpdateVariant(c *gin.Context)
	DeleteVariant(c *gin.Context)

	CreateTopping(c *gin.Context)
	UpdateTopping(c *gin.Context)
	DeleteTopping(c *gin.Context)
}

type productController struct {
	catalog services.CatalogService
}

// NewProductController creates a new instance of ProductController
func NewProductController(catalog services.CatalogService) *productController {
	return &productController{catalog: catalog}
}

// ListPublicProducts godoc
// @Summary List the public catalog
// @Description Get all active products with their active variants and toppings
// @Tags products
// @Produce json
// @Success 200 {array} models.Product
// @Failure 500 {object} models.APIError
// @Router /api/v1/public/products [get]
func (pc *productController) ListPublicProducts(ctx *gin.Context) {
	products, err := pc.catalog.ListProducts(true)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, products)
}

// GetProduct godoc
// @Summary Get a product
// @Description Get a single product by id, with variants and toppings
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.Product
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/products/{id} [get]
func (pc *productController) GetProduct(ctx *gin.Context) {
	product, err := pc.catalog.GetProduct(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, product)
}

// ListProducts returns the full catalog, inactive rows included.
func (pc *productController) ListProducts(ctx *gin.Context) {
	products, err := pc.catalog.ListProducts(false)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, products)
}

// CreateProduct godoc
// @Summary Create a product
// @Tags products
// @Accept json
// @Produce json
// @Success 201 {object} models.Product
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/products [post]
func (pc *productController) CreateProduct(ctx *gin.Context) {
	var input services.ProductInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondBindError(ctx, err)
		return
	}

	product, err := pc.catalog.CreateProduct(input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, product)
}

func (pc *productController) UpdateProduct(ctx *gin.Context) {
	var input services.ProductInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondBindError(ctx, err)
		return
	}

	product, err := pc.catalog.UpdateProduct(ctx.Param("id"), input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, product)
}

func (pc *productController) DeleteProduct(ctx *gin.Context) {
	if err := pc.catalog.DeleteProduct(ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusNoContent, nil)
}

func (pc *productController) CreateVariant(ctx *gin.Context) {
	var input services.VariantInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondBindError(ctx, err)
		return
	}

	variant, err := pc.catalog.CreateVariant(ctx.Param("id"), input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, variant)
}

func (pc *productController) UpdateVariant(ctx *gin.Context) {
	var input services.VariantInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondBindError(ctx, err)
		return
	}

	variant, err := pc.catalog.UpdateVariant(ctx.Param("variantId"), input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, variant)
}

func (pc *productController) DeleteVariant(ctx *gin.Context) {
	if err := pc.catalog.DeleteVariant(ctx.Param("variantId")); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusNoContent, nil)
}

func (pc *productController) CreateTopping(ctx *gin.Context) {
	var input services.ToppingInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondBindError(ctx, err)
		return
	}

	topping, err := pc.catalog.CreateTopping(ctx.Param("id"), input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, topping)
}

func (pc *productController) UpdateTopping(ctx *gin.Context) {
	var input services.ToppingInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondBindError(ctx, err)
		return
	}

	topping, err := pc.catalog.UpdateTopping(ctx.Param("toppingId"), input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, topping)
}

func (pc *productController) DeleteTopping(ctx *gin.Context) {
	if err := pc.catalog.DeleteTopping(ctx.Param("toppingId")); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusNoContent, nil)
}
