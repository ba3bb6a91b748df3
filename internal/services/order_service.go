package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OrderEventPublisher notifies external consumers about order activity.
// Publishing happens after commit and never fails the request.
type OrderEventPublisher interface {
	PublishOrderEvent(orderID, orderCode, event string) error
}

// AdminOrderRequest creates an order on behalf of a known customer, with
// full control over status, payment, fees, discount and total override.
type AdminOrderRequest struct {
	CustomerID       string                `json:"customer_id" binding:"required"`
	Items            []LineRequest         `json:"items" binding:"required"`
	DeliveryMethod   models.DeliveryMethod `json:"delivery_method"`
	DeliveryFeeCLP   int64                 `json:"delivery_fee_clp"`
	PaymentMethod    models.PaymentMethod  `json:"payment_method"`
	PaymentStatus    models.PaymentStatus  `json:"payment_status"`
	Status           models.OrderStatus    `json:"status"`
	DiscountCLP      int64                 `json:"discount_clp"`
	OverrideTotalCLP *int64                `json:"override_total_clp"`
}

// PublicOrderRequest creates an order from the storefront. The customer
// is resolved (or registered) by phone and pricing is always computed
// server side; client-sent prices are never trusted.
type PublicOrderRequest struct {
	CustomerName    string        `json:"customer_name" binding:"required"`
	CustomerPhone   string        `json:"customer_phone" binding:"required"`
	CustomerAddress string        `json:"customer_address"`
	Items           []LineRequest `json:"items" binding:"required"`
}

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	From   *time.Time
	To     *time.Time
	Status models.OrderStatus
}

// StatusUpdate carries the requested targets for the two status axes.
// Nil means "leave unchanged".
type StatusUpdate struct {
	Status        *models.OrderStatus
	PaymentStatus *models.PaymentStatus
}

// OrderService assembles, persists and mutates orders.
type OrderService interface {
	// CreateAdminOrder runs the full transactional workflow for a
	// portal-created sale: pricing, stock reservation, persistence.
	CreateAdminOrder(req AdminOrderRequest) (*models.Order, error)
	// CreatePublicOrder is the storefront flow: resolves the customer by
	// phone, then runs the same workflow with storefront defaults.
	CreatePublicOrder(req PublicOrderRequest) (*models.Order, error)
	// GetOrder returns the order header with customer and items.
	GetOrder(id string) (*models.Order, error)
	// ListOrders returns up to 100 orders, newest first.
	ListOrders(filter OrderFilter) ([]models.Order, error)
	// UpdateStatus applies status and/or payment-status transitions,
	// validated against the transition tables.
	UpdateStatus(id string, update StatusUpdate) (*models.Order, error)
}

type orderService struct {
	db        *gorm.DB
	pricing   PricingEngine
	stock     StockReserver
	customers CustomerService
	events    OrderEventPublisher
}

// NewOrderService creates a new instance of OrderService. events may be
// nil when no broker is configured.
func NewOrderService(db *gorm.DB, customers CustomerService, events OrderEventPublisher) OrderService {
	return &orderService{db: db, customers: customers, events: events}
}

// orderCode builds a human-readable code: prefix, millisecond timestamp
// and a random suffix. The unique index on order_code backs this up at
// the storage layer; timestamps alone are not collision-free under load.
func orderCode(prefix string) string {
	suffix := make([]byte, 2)
	rand.Read(suffix)
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), hex.EncodeToString(suffix))
}

// nextOrderNo allocates the next sequential order number under tx. Two
// concurrent transactions can read the same MAX; the unique index on
// order_no rejects the loser at commit and createOrderTx retries it.
func nextOrderNo(tx *gorm.DB) (int64, error) {
	var n int64
	if err := tx.Model(&models.Order{}).Select("COALESCE(MAX(order_no), 0) + 1").Scan(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// createOrderTxAttempts bounds the retries when concurrent transactions
// race to the same order_no or order_code.
const createOrderTxAttempts = 3

// createOrderTx runs fn as a transaction, retrying when the unique
// indexes on the allocated order identifiers reject a concurrent
// allocation. Each retry re-prices and re-reserves from scratch; the
// rolled-back attempt leaves no rows and no stock decrement behind.
func (s *orderService) createOrderTx(fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= createOrderTxAttempts; attempt++ {
		err = s.db.Transaction(fn)
		if err == nil || !isOrderKeyConflict(err) {
			return err
		}
		log.WithFields(log.Fields{
			"attempt": attempt,
			"error":   err.Error(),
		}).Warn("Order identifier collision, retrying")
	}
	return err
}

// isOrderKeyConflict matches unique-index violations on order_no and
// order_code. Driver messages differ but both name the column.
func isOrderKeyConflict(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "order_no") || strings.Contains(msg, "order_code")
}

// orderHeaderOptions are the non-line fields of a new order.
type orderHeaderOptions struct {
	codePrefix       string
	deliveryMethod   models.DeliveryMethod
	deliveryFeeCLP   int64
	paymentMethod    models.PaymentMethod
	paymentStatus    models.PaymentStatus
	status           models.OrderStatus
	discountCLP      int64
	overrideTotalCLP *int64
}

func (s *orderService) CreateAdminOrder(req AdminOrderRequest) (*models.Order, error) {
	opts := orderHeaderOptions{
		codePrefix:       "ADM",
		deliveryMethod:   req.DeliveryMethod,
		deliveryFeeCLP:   req.DeliveryFeeCLP,
		paymentMethod:    req.PaymentMethod,
		paymentStatus:    req.PaymentStatus,
		status:           req.Status,
		discountCLP:      req.DiscountCLP,
		overrideTotalCLP: req.OverrideTotalCLP,
	}
	// Portal defaults mirror a walk-in sale.
	if opts.deliveryMethod == "" {
		opts.deliveryMethod = models.DeliveryMethodPickup
	}
	if opts.paymentMethod == "" {
		opts.paymentMethod = models.PaymentMethodCash
	}
	if opts.paymentStatus == "" {
		opts.paymentStatus = models.PaymentStatusPaid
	}
	if opts.status == "" {
		opts.status = models.OrderStatusDelivered
	}
	if err := validateHeader(opts); err != nil {
		return nil, err
	}
	if err := validateLines(req.Items); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.createOrderTx(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, "id = ?", req.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "customer", ID: req.CustomerID}
			}
			return err
		}
		var err error
		order, err = s.assembleOrder(tx, customer.ID, req.Items, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(order, "created")
	return order, nil
}

func (s *orderService) CreatePublicOrder(req PublicOrderRequest) (*models.Order, error) {
	opts := orderHeaderOptions{
		codePrefix:     "WEB",
		deliveryMethod: models.DeliveryMethodDelivery,
		paymentMethod:  models.PaymentMethodTransfer,
		paymentStatus:  models.PaymentStatusPending,
		status:         models.OrderStatusPendingPayment,
	}
	if err := validateLines(req.Items); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.createOrderTx(func(tx *gorm.DB) error {
		customer, err := s.customers.ResolveByPhone(tx, req.CustomerName, req.CustomerPhone, req.CustomerAddress)
		if err != nil {
			return err
		}
		order, err = s.assembleOrder(tx, customer.ID, req.Items, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(order, "created")
	return order, nil
}

// assembleOrder prices every line, reserves stock, computes totals and
// inserts the order header plus items, all inside tx. Any error aborts
// the transaction: no order row and no stock decrement survive a partial
// failure.
func (s *orderService) assembleOrder(tx *gorm.DB, customerID string, lines []LineRequest, opts orderHeaderOptions) (*models.Order, error) {
	priced := make([]PricedLine, 0, len(lines))
	for i, line := range lines {
		p, err := s.pricing.PriceLine(tx, line)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}
		priced = append(priced, p)
	}

	if err := s.stock.Reserve(tx, lines); err != nil {
		return nil, err
	}

	var subtotal int64
	for _, p := range priced {
		subtotal += p.LineTotalCLP
	}
	total := subtotal + opts.deliveryFeeCLP - opts.discountCLP
	if total < 0 {
		total = 0
	}
	if opts.overrideTotalCLP != nil {
		total = *opts.overrideTotalCLP
	}

	orderNo, err := nextOrderNo(tx)
	if err != nil {
		return nil, err
	}

	order := models.Order{
		ID:               uuid.NewString(),
		OrderCode:        orderCode(opts.codePrefix),
		OrderNo:          orderNo,
		CustomerID:       customerID,
		Status:           opts.status,
		PaymentStatus:    opts.paymentStatus,
		PaymentMethod:    opts.paymentMethod,
		DeliveryMethod:   opts.deliveryMethod,
		SubtotalCLP:      subtotal,
		DeliveryFeeCLP:   opts.deliveryFeeCLP,
		DiscountCLP:      opts.discountCLP,
		OverrideTotalCLP: opts.overrideTotalCLP,
		TotalCLP:         total,
	}
	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}

	for _, p := range priced {
		item := models.OrderItem{
			ID:                  uuid.NewString(),
			OrderID:             order.ID,
			ProductID:           p.Request.ProductID,
			ProductNameSnapshot: p.ProductName,
			VariantNameSnapshot: p.VariantName,
			Toppings:            p.Toppings,
			UnitPriceCLP:        p.UnitPriceCLP,
			Qty:                 p.Request.Qty,
			LineTotalCLP:        p.LineTotalCLP,
		}
		if p.Request.VariantID != "" {
			variantID := p.Request.VariantID
			item.VariantID = &variantID
		}
		if err := tx.Create(&item).Error; err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}
	return &order, nil
}

func validateHeader(opts orderHeaderOptions) error {
	if !models.ValidDeliveryMethod(opts.deliveryMethod) {
		return &ValidationError{Message: "invalid delivery_method"}
	}
	if !models.ValidPaymentMethod(opts.paymentMethod) {
		return &ValidationError{Message: "invalid payment_method"}
	}
	if !models.ValidPaymentStatus(opts.paymentStatus) {
		return &ValidationError{Message: "invalid payment_status"}
	}
	if !models.ValidOrderStatus(opts.status) {
		return &ValidationError{Message: "invalid status"}
	}
	if opts.deliveryFeeCLP < 0 {
		return &ValidationError{Message: "delivery_fee_clp must be non-negative"}
	}
	if opts.discountCLP < 0 {
		return &ValidationError{Message: "discount_clp must be non-negative"}
	}
	if opts.overrideTotalCLP != nil && *opts.overrideTotalCLP < 0 {
		return &ValidationError{Message: "override_total_clp must be non-negative"}
	}
	return nil
}

func validateLines(lines []LineRequest) error {
	if len(lines) == 0 {
		return &ValidationError{Message: "order must contain at least one item"}
	}
	for i, line := range lines {
		if line.ProductID == "" {
			return &ValidationError{Message: fmt.Sprintf("item[%d]: product_id is required", i)}
		}
		if line.Qty <= 0 {
			return &ValidationError{Message: fmt.Sprintf("item[%d]: qty must be a positive integer", i)}
		}
	}
	return nil
}

func (s *orderService) GetOrder(id string) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Customer").Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "order", ID: id}
		}
		return nil, err
	}
	return &order, nil
}

func (s *orderService) ListOrders(filter OrderFilter) ([]models.Order, error) {
	var orders []models.Order
	q := s.db.Preload("Customer").Order("created_at DESC").Limit(100)
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", *filter.To)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderService) UpdateStatus(id string, update StatusUpdate) (*models.Order, error) {
	if update.Status == nil && update.PaymentStatus == nil {
		return nil, &ValidationError{Message: "nothing to update"}
	}
	if update.Status != nil && !models.ValidOrderStatus(*update.Status) {
		return nil, &ValidationError{Message: "invalid status"}
	}
	if update.PaymentStatus != nil && !models.ValidPaymentStatus(*update.PaymentStatus) {
		return nil, &ValidationError{Message: "invalid payment_status"}
	}

	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "order", ID: id}
			}
			return err
		}
		updates := map[string]interface{}{}
		if update.Status != nil {
			if !CanTransitionOrderStatus(order.Status, *update.Status) {
				return &ConflictError{
					Message: fmt.Sprintf("cannot transition order from %s to %s", order.Status, *update.Status),
					Code:    models.ErrIllegalTransition,
				}
			}
			updates["status"] = *update.Status
		}
		if update.PaymentStatus != nil {
			if !CanTransitionPaymentStatus(order.PaymentStatus, *update.PaymentStatus) {
				return &ConflictError{
					Message: fmt.Sprintf("cannot transition payment from %s to %s", order.PaymentStatus, *update.PaymentStatus),
					Code:    models.ErrIllegalTransition,
				}
			}
			updates["payment_status"] = *update.PaymentStatus
		}
		// Status transitions never touch stock or pricing. Cancelling an
		// order does not restock: decremented inventory is reconciled
		// manually.
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}
		if update.Status != nil {
			order.Status = *update.Status
		}
		if update.PaymentStatus != nil {
			order.PaymentStatus = *update.PaymentStatus
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(&order, "status_updated")
	return &order, nil
}

func (s *orderService) publish(order *models.Order, event string) {
	if s.events == nil || order == nil {
		return
	}
	if err := s.events.PublishOrderEvent(order.ID, order.OrderCode, event); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    event,
		}).Warn("Failed to publish order event")
	}
}
