package models

import "time"

// Product is a catalog entry. Prices are integer Chilean pesos (no
// decimals in CLP). The product's own stock_qty is authoritative only
// while the product has no active variants; once variants exist, each
// variant tracks its own stock and the product counter is informational.
type Product struct {
	ID          string           `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string           `gorm:"not null" json:"name"`
	Slug        string           `gorm:"uniqueIndex;not null" json:"slug"`
	Description string           `json:"description"`
	PriceCLP    int64            `gorm:"not null" json:"price_clp"`
	StockQty    int64            `gorm:"not null;default:0" json:"stock_qty"`
	IsActive    bool             `gorm:"not null;default:true" json:"is_active"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	Toppings    []ProductTopping `gorm:"foreignKey:ProductID" json:"toppings,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ProductVariant is a sellable variation of a product (size, flavor).
// When PriceOverrideCLP is set it fully replaces the product price.
type ProductVariant struct {
	ID               string    `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID        string    `gorm:"type:uuid;index;not null" json:"product_id"`
	Name             string    `gorm:"not null" json:"name"`
	PriceOverrideCLP *int64    `json:"price_override_clp,omitempty"`
	StockQty         int64     `gorm:"not null;default:0" json:"stock_qty"`
	IsActive         bool      `gorm:"not null;default:true" json:"is_active"`
	SortOrder        int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProductTopping is a priced add-on for a product. Toppings never carry
// stock; they only add to the unit price of a line.
type ProductTopping struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID string    `gorm:"type:uuid;index;not null" json:"product_id"`
	Name      string    `gorm:"not null" json:"name"`
	PriceCLP  int64     `gorm:"not null" json:"price_clp"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
