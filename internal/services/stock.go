package services

import (
	"errors"
	"fmt"

	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate adds a row-level exclusive lock to the query on dialects that
// support it. SQLite rejects FOR UPDATE; its single-writer model already
// serializes the transaction.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// StockReserver atomically validates and decrements stock for a whole
// order: every line reserves, or none does.
//
// The authoritative counter for a line is the variant's stock when a
// variant is selected, otherwise the product's stock. Reserve must run in
// the same transaction that priced the lines; the pricing reads already
// hold the row locks, so the quantities read here cannot be stale.
type StockReserver struct{}

type stockDemand struct {
	productID string
	variantID string
	qty       int64
}

// Reserve checks availability for every line and decrements the
// authoritative counters. Duplicate lines targeting the same counter are
// summed before comparison so combined demand cannot slip past the check.
// Any failure leaves the transaction to be rolled back by the caller.
func (StockReserver) Reserve(tx *gorm.DB, lines []LineRequest) error {
	// Aggregate demand per authoritative counter, preserving the order
	// in which counters first appear so failures are deterministic.
	index := make(map[string]int)
	var demands []stockDemand
	for _, line := range lines {
		key := line.ProductID + "/" + line.VariantID
		if i, ok := index[key]; ok {
			demands[i].qty += line.Qty
			continue
		}
		index[key] = len(demands)
		demands = append(demands, stockDemand{
			productID: line.ProductID,
			variantID: line.VariantID,
			qty:       line.Qty,
		})
	}

	for _, d := range demands {
		if d.variantID != "" {
			if err := reserveVariant(tx, d); err != nil {
				return err
			}
			continue
		}
		if err := reserveProduct(tx, d); err != nil {
			return err
		}
	}
	return nil
}

func reserveVariant(tx *gorm.DB, d stockDemand) error {
	var variant models.ProductVariant
	if err := forUpdate(tx).First(&variant, "id = ?", d.variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "variant", ID: d.variantID}
		}
		return err
	}
	if d.qty > variant.StockQty {
		var product models.Product
		name := variant.Name
		if err := tx.First(&product, "id = ?", variant.ProductID).Error; err == nil {
			name = fmt.Sprintf("%s (%s)", product.Name, variant.Name)
		}
		return &InsufficientStockError{Name: name, Requested: d.qty, Available: variant.StockQty}
	}
	return tx.Model(&models.ProductVariant{}).
		Where("id = ?", d.variantID).
		UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", d.qty)).Error
}

func reserveProduct(tx *gorm.DB, d stockDemand) error {
	var product models.Product
	if err := forUpdate(tx).First(&product, "id = ?", d.productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "product", ID: d.productID}
		}
		return err
	}
	if d.qty > product.StockQty {
		return &InsufficientStockError{Name: product.Name, Requested: d.qty, Available: product.StockQty}
	}
	return tx.Model(&models.Product{}).
		Where("id = ?", d.productID).
		UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", d.qty)).Error
}
