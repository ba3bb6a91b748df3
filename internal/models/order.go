package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusPreparing      OrderStatus = "PREPARING"
	OrderStatusReady          OrderStatus = "READY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

// PaymentStatus is a parallel axis to OrderStatus.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// PaymentMethod records how the customer pays. Payment is recorded, not
// processed.
type PaymentMethod string

const (
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodOnline   PaymentMethod = "ONLINE"
)

// DeliveryMethod is how the order reaches the customer.
type DeliveryMethod string

const (
	DeliveryMethodPickup   DeliveryMethod = "PICKUP"
	DeliveryMethodDelivery DeliveryMethod = "DELIVERY"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPendingPayment, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodTransfer, PaymentMethodCash, PaymentMethodOnline:
		return true
	}
	return false
}

// ValidDeliveryMethod reports whether m is a known delivery method.
func ValidDeliveryMethod(m DeliveryMethod) bool {
	switch m {
	case DeliveryMethodPickup, DeliveryMethodDelivery:
		return true
	}
	return false
}

// Order is the persisted order header. Monetary invariant:
// total = max(0, subtotal + delivery_fee - discount), unless an
// override is present, in which case total = override.
type Order struct {
	ID               string         `gorm:"type:uuid;primaryKey" json:"id"`
	OrderCode        string         `gorm:"uniqueIndex;not null" json:"order_code"`
	OrderNo          int64          `gorm:"uniqueIndex;not null" json:"order_no"`
	CustomerID       string         `gorm:"type:uuid;index;not null" json:"customer_id"`
	Customer         *Customer      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Status           OrderStatus    `gorm:"not null" json:"status"`
	PaymentStatus    PaymentStatus  `gorm:"not null" json:"payment_status"`
	PaymentMethod    PaymentMethod  `gorm:"not null" json:"payment_method"`
	DeliveryMethod   DeliveryMethod `gorm:"not null" json:"delivery_method"`
	SubtotalCLP      int64          `gorm:"not null" json:"subtotal_clp"`
	DeliveryFeeCLP   int64          `gorm:"not null" json:"delivery_fee_clp"`
	DiscountCLP      int64          `gorm:"not null;default:0" json:"discount_clp"`
	OverrideTotalCLP *int64         `json:"override_total_clp,omitempty"`
	TotalCLP         int64          `gorm:"not null" json:"total_clp"`
	Items            []OrderItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// ToppingSnapshot is the id/name/price of a topping as it was at order
// time, immune to later catalog edits.
type ToppingSnapshot struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PriceCLP int64  `json:"price_clp"`
}

// OrderItem is one line of an order. Items are immutable after creation;
// product and variant names are snapshotted so later renames do not
// rewrite history.
type OrderItem struct {
	ID                  string            `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID             string            `gorm:"type:uuid;index;not null" json:"order_id"`
	ProductID           string            `gorm:"type:uuid;not null" json:"product_id"`
	ProductNameSnapshot string            `gorm:"not null" json:"product_name_snapshot"`
	VariantID           *string           `gorm:"type:uuid" json:"variant_id,omitempty"`
	VariantNameSnapshot string            `json:"variant_name_snapshot,omitempty"`
	Toppings            []ToppingSnapshot `gorm:"serializer:json" json:"toppings,omitempty"`
	UnitPriceCLP        int64             `gorm:"not null" json:"unit_price_clp"`
	Qty                 int64             `gorm:"not null" json:"qty"`
	LineTotalCLP        int64             `gorm:"not null" json:"line_total_clp"`
	CreatedAt           time.Time         `json:"created_at"`
}
