package services

import (
	"errors"

	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/models"
	"gorm.io/gorm"
)

// LineRequest is one requested order line: a product, optionally a
// specific variant, optional toppings and a quantity.
type LineRequest struct {
	ProductID  string   `json:"product_id" binding:"required"`
	VariantID  string   `json:"variant_id"`
	ToppingIDs []string `json:"topping_ids"`
	Qty        int64    `json:"qty" binding:"required"`
}

// PricedLine is the result of pricing a LineRequest: the unit price after
// variant override and toppings, the line total, and the name/price
// snapshots that go on the order item.
type PricedLine struct {
	Request      LineRequest
	UnitPriceCLP int64
	LineTotalCLP int64
	ProductName  string
	VariantName  string
	Toppings     []models.ToppingSnapshot
}

// PricingEngine computes unit prices and line totals for order lines.
// It performs no writes; reads of product and variant rows take the
// row-level lock so that a concurrent order cannot change stock between
// pricing and reservation.
type PricingEngine struct{}

// PriceLine validates and prices a single line inside tx.
//
// Unit price starts at the product price; a variant price override
// replaces it entirely; topping prices are added on top. Topping
// addition is commutative, so the order of topping ids does not matter.
func (PricingEngine) PriceLine(tx *gorm.DB, req LineRequest) (PricedLine, error) {
	if req.Qty <= 0 {
		return PricedLine{}, &ValidationError{Message: "qty must be a positive integer"}
	}

	var product models.Product
	if err := forUpdate(tx).First(&product, "id = ?", req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PricedLine{}, &NotFoundError{Entity: "product", ID: req.ProductID}
		}
		return PricedLine{}, err
	}
	if !product.IsActive {
		return PricedLine{}, &InactiveEntityError{Entity: "product", Name: product.Name}
	}

	priced := PricedLine{
		Request:      req,
		UnitPriceCLP: product.PriceCLP,
		ProductName:  product.Name,
	}

	if req.VariantID != "" {
		var variant models.ProductVariant
		if err := forUpdate(tx).First(&variant, "id = ?", req.VariantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return PricedLine{}, &NotFoundError{Entity: "variant", ID: req.VariantID}
			}
			return PricedLine{}, err
		}
		if variant.ProductID != req.ProductID {
			return PricedLine{}, &OwnershipMismatchError{Entity: "variant", Name: variant.Name, ProductID: req.ProductID}
		}
		if !variant.IsActive {
			return PricedLine{}, &InactiveEntityError{Entity: "variant", Name: variant.Name}
		}
		if variant.PriceOverrideCLP != nil {
			priced.UnitPriceCLP = *variant.PriceOverrideCLP
		}
		priced.VariantName = variant.Name
	}

	for _, toppingID := range req.ToppingIDs {
		var topping models.ProductTopping
		if err := tx.First(&topping, "id = ?", toppingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return PricedLine{}, &NotFoundError{Entity: "topping", ID: toppingID}
			}
			return PricedLine{}, err
		}
		if topping.ProductID != req.ProductID {
			return PricedLine{}, &OwnershipMismatchError{Entity: "topping", Name: topping.Name, ProductID: req.ProductID}
		}
		priced.UnitPriceCLP += topping.PriceCLP
		priced.Toppings = append(priced.Toppings, models.ToppingSnapshot{
			ID:       topping.ID,
			Name:     topping.Name,
			PriceCLP: topping.PriceCLP,
		})
	}

	priced.LineTotalCLP = priced.UnitPriceCLP * req.Qty
	return priced, nil
}
