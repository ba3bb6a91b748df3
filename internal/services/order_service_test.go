package services

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.ProductTopping{},
		&models.Customer{},
		&models.Order{},
		&models.OrderItem{},
		&models.User{},
		&models.CakeCategory{},
		&models.CakeOption{},
		&models.CakeOrder{},
	)
	require.NoError(t, err)

	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, priceCLP, stockQty int64) *models.Product {
	product := &models.Product{
		ID:       uuid.NewString(),
		Name:     name,
		Slug:     strings.ToLower(strings.ReplaceAll(name, " ", "-")) + "-" + uuid.NewString()[:8],
		PriceCLP: priceCLP,
		StockQty: stockQty,
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedVariant(t *testing.T, db *gorm.DB, productID, name string, override *int64, stockQty int64) *models.ProductVariant {
	variant := &models.ProductVariant{
		ID:               uuid.NewString(),
		ProductID:        productID,
		Name:             name,
		PriceOverrideCLP: override,
		StockQty:         stockQty,
		IsActive:         true,
	}
	require.NoError(t, db.Create(variant).Error)
	return variant
}

func seedTopping(t *testing.T, db *gorm.DB, productID, name string, priceCLP int64) *models.ProductTopping {
	topping := &models.ProductTopping{
		ID:        uuid.NewString(),
		ProductID: productID,
		Name:      name,
		PriceCLP:  priceCLP,
	}
	require.NoError(t, db.Create(topping).Error)
	return topping
}

func seedCustomer(t *testing.T, db *gorm.DB, name, phone string) *models.Customer {
	customer := &models.Customer{
		ID:       uuid.NewString(),
		FullName: name,
		Phone:    phone,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// recordingPublisher captures order events instead of talking to a broker.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	fail   error
}

func (p *recordingPublisher) PublishOrderEvent(orderID, orderCode, event string) error {
	if p.fail != nil {
		return p.fail
	}
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	return nil
}

func newTestOrderService(db *gorm.DB) (OrderService, *recordingPublisher) {
	publisher := &recordingPublisher{}
	return NewOrderService(db, NewCustomerService(db), publisher), publisher
}

func int64Ptr(v int64) *int64 { return &v }

func TestCreateAdminOrderTotals(t *testing.T) {
	db := setupTestDB(t)
	svc, publisher := newTestOrderService(db)

	product := seedProduct(t, db, "Torta de chocolate", 10000, 10)
	customer := seedCustomer(t, db, "Ana Rojas", "+56911111111")

	order, err := svc.CreateAdminOrder(AdminOrderRequest{
		CustomerID:     customer.ID,
		Items:          []LineRequest{{ProductID: product.ID, Qty: 1}},
		DeliveryFeeCLP: 1500,
		DiscountCLP:    2000,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10000), order.SubtotalCLP)
	assert.Equal(t, int64(9500), order.TotalCLP)
	assert.True(t, strings.HasPrefix(order.OrderCode, "ADM-"))
	assert.Equal(t, int64(1), order.OrderNo)

	// Portal defaults mirror a walk-in sale
	assert.Equal(t, models.DeliveryMethodPickup, order.DeliveryMethod)
	assert.Equal(t, models.PaymentMethodCash, order.PaymentMethod)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, models.OrderStatusDelivered, order.Status)

	var stored models.Product
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, int64(9), stored.StockQty)

	assert.Equal(t, []string{"created"}, publisher.events)
}

func TestCreateAdminOrderTotalNeverNegative(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestOrderService(db)

	product := seedProduct(t, db, "Galletas", 1000, 10)
	customer := seedCustomer(t, db, "Ana Rojas", "+56911111111")

	order, err := svc.CreateAdminOrder(AdminOrderRequest{
		CustomerID:  customer.ID,
		Items:       []LineRequest{{ProductID: product.ID, Qty: 1}},
		DiscountCLP: 5000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), order.TotalCLP)
}

func TestCreateAdminOrderOverrideTotal(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestOrderService(db)

	product := seedProduct(t, db, "Torta de chocolate", 10000, 10)
	customer := seedCustomer(t, db, "Ana Rojas", "+56911111111")

	order, err := svc.CreateAdminOrder(AdminOrderRequest{
		CustomerID:       customer.ID,
		Items:            []LineRequest{{ProductID: product.ID, Qty: 1}},
		OverrideTotalCLP: int64Ptr(7000),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10000), order.SubtotalCLP)
	assert.Equal(t, int64(7000), order.TotalCLP)
	require.NotNil(t, order.OverrideTotalCLP)
	assert.Equal(t, int64(7000), *order.OverrideTotalCLP)
}

func TestCreateAdminOrderVariantAndToppings(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestOrderService(db)

	product := seedProduct(t, db, "Cheesecake", 12000, 99)
	variant := seedVariant(t, db, product.ID, "Individual", int64Ptr(2000), 3)
	topping := seedTopping(t, db, product.ID, "Frutos rojos", 500)
	customer := seedCustomer(t, db, "Ana Rojas", "+56911111111")

	order, err := svc.CreateAdminOrder(AdminOrderRequest{
		CustomerID: customer.ID,
		Items: []LineRequest{{
			ProductID:  product.ID,
			VariantID:  variant.ID,
			ToppingIDs: []string{topping.ID},
			Qty:        2,
		}},
	})
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	// Variant override replaces the product price, toppings add on top
	assert.Equal(t, int64(2500), item.UnitPriceCLP)
	assert.Equal(t, int64(5000), item.LineTotalCLP)
	assert.Equal(t, "Cheesecake", item.ProductNameSnapshot)
	assert.Equal(t, "Individual", item.VariantNameSnapshot)
	require.Len(t, item.Toppings, 1)
	assert.Equal(t, int64(500), item.Toppings[0].PriceCLP)

	// The variant is the authoritative stock counter
	var storedVariant models.ProductVariant
	require.NoError(t, db.First(&storedVariant, "id = ?", variant.ID).Error)
	assert.Equal(t, int64(1), storedVariant.StockQty)

	var storedProduct models.Product
	require.NoError(t, db.First(&storedProduct, "id = ?", product.ID).Error)
	assert.Equal(t, int64(99), storedProduct.StockQty)
}

func TestCreateAdminOrderStockToZeroThenFail(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestOrderService(db)

	product := seedProduct(t, db, "Pie de limon", 8000, 5)
	customer := seedCustomer(t, db, "Ana Rojas", "+56911111111")

	_, err := svc.CreateAdminOrder(AdminOrderRequest{
		CustomerID: customer.ID,
		Items:      []LineRequest{{ProductID: product.ID, Qty: 5}},
	})
	require.NoError(t, err)

	var stored models.Product
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, int64(0), stored.StockQty)

	_, err = svc.CreateAdminOrder(AdminOrderRequest{
		CustomerID: customer.ID,
		Items:      []LineRequest{{ProductID: product.ID, Qty: 1}},
	})
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(1), stockErr.Requested)
	assert.Equal(t, int64(0), stockErr.Available)
}

func TestCreateAdminOrderDuplicateLinesSumDemand(t *testing.T) {
	db := setupTestDB(t)
	svc, publisher := newTestOrderService(db)

	product := seedProduct(t, db, "Brownie", 2000, 6)
	customer := seedCustomer(t, db, "Ana Rojas", "+56911111111")

	// 3 + 4 = 7 against a stock of 6: the combined demand must fail even
	// though each line alone would pass
	_, err := svc.CreateAdminOrder(AdminOrderRequest{
		CustomerID: customer.ID,
		Items: []LineRequest{
			{ProductID: product.ID, Qty: 3},
			{ProductID: product.ID, Qty: 4},
		},
	})
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(7), stockErr.Requested)
	assert.Equal(t, int64(6), stockErr.Available)

	var stored models.Product
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, int64(6), stored.StockQty)

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	assert.Equal(t, int64(0), orderCount)
	assert.Empty(t, publisher.events)
}

func TestCreateAdminOrderRollbackLeavesNoTrace(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestOrderService(db)

	first := seedProduct(t, db, "Alfajores", 3000, 10)
	second := seedProduct(t, db, "Macarons", 4000, 1)
	customer := seedCustomer(t, db, "Ana Rojas", "+56911111111")

	_, err := svc.CreateAdminOrder(AdminOrderRequest{
		CustomerID: customer.ID,
		Items: []LineRequest{
			{ProductID: first.ID, Qty: 2},
			{ProductID: second.ID, Qty: 5},
		},
	})
	require.Error(t, err)

	// The failing second line must roll back the first line's decrement
	var storedFirst models.Product
	require.NoError(t, db.First(&storedFirst, "id = ?", first.ID).Error)
	assert.Equal(t, int64(10), storedFirst.StockQty)

	var orderCount, itemCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	db.Model(&models.OrderItem{}).Count(&itemCount)
	assert.Equal(t, int64(0), orderCount)
	assert.Equal(t, int64(0), itemCount)
}

func TestCreateAdminOrderOwnershipMismatch(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestOrderService(db)

	product := seedProduct(t, db, "Cheesecake", 12000, 10)
	other := seedProduct(t, db, "Tiramisu", 9000, 10)
	foreignVariant := seedVariant(t, db, other.ID, "Grande", nil, 10)
	customer := seedCustomer(t, db, "Ana Rojas", "+56911111111")

	_, err := svc.CreateAdminOrder(AdminOrderRequest{
		CustomerID: customer.ID,
		Items: []LineRequest{{
			ProductID: product.ID,
			VariantID: foreignVariant.ID,
			Qty:       1,
		}},
	})
	var mismatchErr *OwnershipMismatchError
	require.ErrorAs(t, err, &mismatchErr)
	assert.Contains(t, err.Error(), "item[0]")
}

func TestCreateAdminOrderInactiveProduct(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestOrderService(db)

	product := seedProduct(t, db, "Torta retirada", 10000, 10)
	require.NoError(t, db.Model(product).Update("is_active", false).Error)
	customer := seedCustomer(t, db, "Ana Rojas", "+56911111111")

	_, err := svc.CreateAdminOrder(AdminOrderRequest{
		CustomerID: customer.ID,
		Items:      []LineRequest{{ProductID: product.ID, Qty: 1}},
	})
	var inactiveErr *InactiveEntityError
	require.ErrorAs(t, err, &inactiveErr)
}

func TestCreateAdminOrderValidation(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestOrderService(db)
	customer := seedCustomer(t, db, "Ana Rojas", "+56911111111")

	testCases := []struct {
		name string
		req  AdminOrderRequest
	}{
		{
			name: "no items",
			req:  AdminOrderRequest{CustomerID: customer.ID},
		},
		{
			name: "zero qty",
			req: AdminOrderRequest{
				CustomerID: customer.ID,
				Items:      []LineRequest{{ProductID: uuid.NewString(), Qty: 0}},
			},
		},
		{
			name: "negative discount",
			req: AdminOrderRequest{
				CustomerID:  customer.ID,
				Items:       []LineRequest{{ProductID: uuid.NewString(), Qty: 1}},
				DiscountCLP: -100,
			},
		},
		{
			name: "unknown payment method",
			req: AdminOrderRequest{
				CustomerID:    customer.ID,
				Items:         []LineRequest{{ProductID: uuid.NewString(), Qty: 1}},
				PaymentMethod: "BARTER",
			},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAdminOrder(tt.req)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestCreateAdminOrderUnknownCustomer(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestOrderService(db)
	product := seedProduct(t, db, "Brownie", 2000, 5)

	_, err := svc.CreateAdminOrder(AdminOrderRequest{
		CustomerID: uuid.NewString(),
		Items:      []LineRequest{{ProductID: product.ID, Qty: 1}},
	})
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "customer", notFoundErr.Entity)
}

func TestCreatePublicOrderRegistersCustomer(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestOrderService(db)

	product := seedProduct(t, db, "Torta de vainilla", 15000, 4)

	order, err := svc.CreatePublicOrder(PublicOrderRequest{
		CustomerName:    "Pedro Soto",
		CustomerPhone:   "+56922222222",
		CustomerAddress: "Av. Siempre Viva 742",
		Items:           []LineRequest{{ProductID: product.ID, Qty: 1}},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(order.OrderCode, "WEB-"))
	assert.Equal(t, models.OrderStatusPendingPayment, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, models.PaymentMethodTransfer, order.PaymentMethod)
	assert.Equal(t, models.DeliveryMethodDelivery, order.DeliveryMethod)

	var customer models.Customer
	require.NoError(t, db.First(&customer, "phone = ?", "+56922222222").Error)
	assert.Equal(t, "Pedro Soto", customer.FullName)
	assert.Equal(t, "Av. Siempre Viva 742", customer.Address)
}

func TestCreatePublicOrderReusesCustomerByPhone(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestOrderService(db)

	product := seedProduct(t, db, "Torta de vainilla", 15000, 4)
	existing := seedCustomer(t, db, "P. Soto", "+56922222222")
	require.NoError(t, db.Model(existing).Update("address", "Calle Antigua 1").Error)

	// Blank address on a repeat order keeps the stored one
	order, err := svc.CreatePublicOrder(PublicOrderRequest{
		CustomerName:  "Pedro Soto",
		CustomerPhone: "+56922222222",
		Items:         []LineRequest{{ProductID: product.ID, Qty: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, order.CustomerID)

	var customer models.Customer
	require.NoError(t, db.First(&customer, "id = ?", existing.ID).Error)
	assert.Equal(t, "Pedro Soto", customer.FullName)
	assert.Equal(t, "Calle Antigua 1", customer.Address)

	var customerCount int64
	db.Model(&models.Customer{}).Count(&customerCount)
	assert.Equal(t, int64(1), customerCount)
}

func TestUpdateStatusTransitions(t *testing.T) {
	db := setupTestDB(t)
	svc, publisher := newTestOrderService(db)

	product := seedProduct(t, db, "Torta de vainilla", 15000, 4)
	order, err := svc.CreatePublicOrder(PublicOrderRequest{
		CustomerName:  "Pedro Soto",
		CustomerPhone: "+56922222222",
		Items:         []LineRequest{{ProductID: product.ID, Qty: 1}},
	})
	require.NoError(t, err)

	confirmed := models.OrderStatusConfirmed
	paid := models.PaymentStatusPaid
	updated, err := svc.UpdateStatus(order.ID, StatusUpdate{Status: &confirmed, PaymentStatus: &paid})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, updated.Status)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
	assert.Contains(t, publisher.events, "status_updated")

	// Jumping straight to DELIVERED from CONFIRMED is illegal
	delivered := models.OrderStatusDelivered
	_, err = svc.UpdateStatus(order.ID, StatusUpdate{Status: &delivered})
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, models.ErrIllegalTransition, conflictErr.Code)

	// An illegal payment transition must not let the order status slip
	// through either
	preparing := models.OrderStatusPreparing
	pending := models.PaymentStatusPending
	_, err = svc.UpdateStatus(order.ID, StatusUpdate{Status: &preparing, PaymentStatus: &pending})
	require.ErrorAs(t, err, &conflictErr)

	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, models.OrderStatusConfirmed, stored.Status)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
}

func TestUpdateStatusCancelDoesNotRestock(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestOrderService(db)

	product := seedProduct(t, db, "Torta de vainilla", 15000, 4)
	order, err := svc.CreatePublicOrder(PublicOrderRequest{
		CustomerName:  "Pedro Soto",
		CustomerPhone: "+56922222222",
		Items:         []LineRequest{{ProductID: product.ID, Qty: 2}},
	})
	require.NoError(t, err)

	cancelled := models.OrderStatusCancelled
	_, err = svc.UpdateStatus(order.ID, StatusUpdate{Status: &cancelled})
	require.NoError(t, err)

	var stored models.Product
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, int64(2), stored.StockQty)
}

func TestUpdateStatusValidation(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestOrderService(db)

	_, err := svc.UpdateStatus(uuid.NewString(), StatusUpdate{})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	bogus := models.OrderStatus("SHIPPED")
	_, err = svc.UpdateStatus(uuid.NewString(), StatusUpdate{Status: &bogus})
	require.ErrorAs(t, err, &validationErr)

	confirmed := models.OrderStatusConfirmed
	_, err = svc.UpdateStatus(uuid.NewString(), StatusUpdate{Status: &confirmed})
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestListOrdersFilters(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestOrderService(db)

	product := seedProduct(t, db, "Brownie", 2000, 100)
	customer := seedCustomer(t, db, "Ana Rojas", "+56911111111")

	_, err := svc.CreateAdminOrder(AdminOrderRequest{
		CustomerID: customer.ID,
		Items:      []LineRequest{{ProductID: product.ID, Qty: 1}},
	})
	require.NoError(t, err)
	_, err = svc.CreateAdminOrder(AdminOrderRequest{
		CustomerID: customer.ID,
		Items:      []LineRequest{{ProductID: product.ID, Qty: 1}},
		Status:     models.OrderStatusConfirmed,
	})
	require.NoError(t, err)

	all, err := svc.ListOrders(OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	confirmed, err := svc.ListOrders(OrderFilter{Status: models.OrderStatusConfirmed})
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, models.OrderStatusConfirmed, confirmed[0].Status)
}

func TestGetOrderWithItems(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestOrderService(db)

	product := seedProduct(t, db, "Brownie", 2000, 100)
	customer := seedCustomer(t, db, "Ana Rojas", "+56911111111")

	created, err := svc.CreateAdminOrder(AdminOrderRequest{
		CustomerID: customer.ID,
		Items:      []LineRequest{{ProductID: product.ID, Qty: 3}},
	})
	require.NoError(t, err)

	order, err := svc.GetOrder(created.ID)
	require.NoError(t, err)
	require.NotNil(t, order.Customer)
	assert.Equal(t, "Ana Rojas", order.Customer.FullName)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(6000), order.Items[0].LineTotalCLP)

	_, err = svc.GetOrder(uuid.NewString())
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestOrderNumbersAreSequential(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestOrderService(db)

	product := seedProduct(t, db, "Brownie", 2000, 100)
	customer := seedCustomer(t, db, "Ana Rojas", "+56911111111")

	for i := int64(1); i <= 3; i++ {
		order, err := svc.CreateAdminOrder(AdminOrderRequest{
			CustomerID: customer.ID,
			Items:      []LineRequest{{ProductID: product.ID, Qty: 1}},
		})
		require.NoError(t, err)
		assert.Equal(t, i, order.OrderNo)
	}
}

func TestOrderNumberUniqueIndex(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db, "Ana Rojas", "+56911111111")

	first := models.Order{
		ID:             uuid.NewString(),
		OrderCode:      "ADM-1-aa00",
		OrderNo:        7,
		CustomerID:     customer.ID,
		Status:         models.OrderStatusDelivered,
		PaymentStatus:  models.PaymentStatusPaid,
		PaymentMethod:  models.PaymentMethodCash,
		DeliveryMethod: models.DeliveryMethodPickup,
	}
	require.NoError(t, db.Create(&first).Error)

	second := first
	second.ID = uuid.NewString()
	second.OrderCode = "ADM-2-bb11"
	err := db.Create(&second).Error

	require.Error(t, err)
	assert.True(t, isOrderKeyConflict(err))
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "orders.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.ProductTopping{},
		&models.Customer{},
		&models.Order{},
		&models.OrderItem{},
	))

	product := seedProduct(t, db, "Brownie", 2000, 5)
	customer := seedCustomer(t, db, "Ana Rojas", "+56911111111")
	svc, _ := newTestOrderService(db)

	const workers = 10
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, err := svc.CreateAdminOrder(AdminOrderRequest{
				CustomerID: customer.ID,
				Items:      []LineRequest{{ProductID: product.ID, Qty: 1}},
			})
			results <- err
		}()
	}

	successes := 0
	for i := 0; i < workers; i++ {
		if err := <-results; err == nil {
			successes++
		} else {
			var stockErr *InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
		}
	}

	// Exactly the available stock is sold; never more, never below zero
	assert.Equal(t, 5, successes)
	var stored models.Product
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, int64(0), stored.StockQty)

	// Order numbers stay unique under concurrent allocation
	var numbers []int64
	require.NoError(t, db.Model(&models.Order{}).Order("order_no").Pluck("order_no", &numbers).Error)
	require.Len(t, numbers, successes)
	seen := map[int64]bool{}
	for _, n := range numbers {
		assert.False(t, seen[n], "duplicate order_no %d", n)
		seen[n] = true
	}
}

func TestPublisherFailureDoesNotFailOrder(t *testing.T) {
	db := setupTestDB(t)
	publisher := &recordingPublisher{fail: assert.AnError}
	svc := NewOrderService(db, NewCustomerService(db), publisher)

	product := seedProduct(t, db, "Brownie", 2000, 100)
	customer := seedCustomer(t, db, "Ana Rojas", "+56911111111")

	order, err := svc.CreateAdminOrder(AdminOrderRequest{
		CustomerID: customer.ID,
		Items:      []LineRequest{{ProductID: product.ID, Qty: 1}},
	})
	require.NoError(t, err)
	assert.NotNil(t, order)
}
