package models

import "time"

// Cake configurator category types.
const (
	CakeCategorySize       = "SIZE"
	CakeCategoryLayers     = "LAYERS"
	CakeCategorySponge     = "SPONGE"
	CakeCategoryFilling    = "FILLING"
	CakeCategoryDecoration = "DECORATION"
)

// CakeCategory is one step of the cake configurator (size, layers,
// sponge, filling, decoration).
type CakeCategory struct {
	ID        string       `gorm:"type:uuid;primaryKey" json:"id"`
	Type      string       `gorm:"not null" json:"type"`
	Label     string       `gorm:"not null" json:"label"`
	SortOrder int          `gorm:"not null;default:0" json:"sort_order"`
	IsActive  bool         `gorm:"not null;default:true" json:"is_active"`
	Options   []CakeOption `gorm:"foreignKey:CategoryID" json:"options,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// CakeOption is one selectable option within a configurator category.
// ExtraPriceCLP is added on top of the cake base price.
type CakeOption struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID    string    `gorm:"type:uuid;index;not null" json:"category_id"`
	Label         string    `gorm:"not null" json:"label"`
	Description   string    `json:"description"`
	ExtraPriceCLP int64     `gorm:"not null;default:0" json:"extra_price_clp"`
	IsDefault     bool      `gorm:"not null;default:false" json:"is_default"`
	DiameterCM    *int      `json:"diameter_cm,omitempty"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	SortOrder     int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CakeOrder is a custom cake request from the public configurator.
// Cake orders are quotes with a 50% deposit; they do not touch product
// stock.
type CakeOrder struct {
	ID                 string      `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber        string      `gorm:"uniqueIndex;not null" json:"order_number"`
	CustomerName       string      `gorm:"not null" json:"customer_name"`
	CustomerPhone      string      `gorm:"not null" json:"customer_phone"`
	CustomerEmail      string      `json:"customer_email,omitempty"`
	CustomerAddress    string      `json:"customer_address,omitempty"`
	SizeOptionID       *string     `gorm:"type:uuid" json:"size_option_id,omitempty"`
	LayersOptionID     *string     `gorm:"type:uuid" json:"layers_option_id,omitempty"`
	SpongeOptionID     *string     `gorm:"type:uuid" json:"sponge_option_id,omitempty"`
	FillingOptionID    *string     `gorm:"type:uuid" json:"filling_option_id,omitempty"`
	DecorationOptionID *string     `gorm:"type:uuid" json:"decoration_option_id,omitempty"`
	BasePriceCLP       int64       `gorm:"not null" json:"base_price_clp"`
	ExtrasPriceCLP     int64       `gorm:"not null" json:"extras_price_clp"`
	TotalPriceCLP      int64       `gorm:"not null" json:"total_price_clp"`
	DepositCLP         int64       `gorm:"not null" json:"deposit_clp"`
	Notes              string      `json:"notes,omitempty"`
	Status             OrderStatus `gorm:"not null" json:"status"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}
