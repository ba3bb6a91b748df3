package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCakeCategory(t *testing.T, db *gorm.DB, categoryType, label string, sortOrder int) *models.CakeCategory {
	category := &models.CakeCategory{
		ID:        uuid.NewString(),
		Type:      categoryType,
		Label:     label,
		SortOrder: sortOrder,
		IsActive:  true,
	}
	require.NoError(t, db.Create(category).Error)
	return category
}

func seedCakeOption(t *testing.T, db *gorm.DB, categoryID, label string, extraCLP int64) *models.CakeOption {
	option := &models.CakeOption{
		ID:            uuid.NewString(),
		CategoryID:    categoryID,
		Label:         label,
		ExtraPriceCLP: extraCLP,
		IsActive:      true,
	}
	require.NoError(t, db.Create(option).Error)
	return option
}

func TestCreateCakeOrderPricing(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCakeService(db, 30000)

	size := seedCakeCategory(t, db, models.CakeCategorySize, "Tamaño", 1)
	filling := seedCakeCategory(t, db, models.CakeCategoryFilling, "Relleno", 2)
	bigSize := seedCakeOption(t, db, size.ID, "30 personas", 15000)
	manjar := seedCakeOption(t, db, filling.ID, "Manjar", 3000)

	order, err := svc.CreateCakeOrder(CakeOrderRequest{
		CustomerName:    "Carla Díaz",
		CustomerPhone:   "+56933333333",
		SizeOptionID:    &bigSize.ID,
		FillingOptionID: &manjar.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(30000), order.BasePriceCLP)
	assert.Equal(t, int64(18000), order.ExtrasPriceCLP)
	assert.Equal(t, int64(48000), order.TotalPriceCLP)
	assert.Equal(t, int64(24000), order.DepositCLP)
	assert.Equal(t, models.OrderStatusPendingPayment, order.Status)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "CAKE-"))
}

func TestCreateCakeOrderDepositRoundsUp(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCakeService(db, 30001)

	order, err := svc.CreateCakeOrder(CakeOrderRequest{
		CustomerName:  "Carla Díaz",
		CustomerPhone: "+56933333333",
	})
	require.NoError(t, err)

	// Half of 30001 rounds up to 15001 whole pesos
	assert.Equal(t, int64(30001), order.TotalPriceCLP)
	assert.Equal(t, int64(15001), order.DepositCLP)
}

func TestCreateCakeOrderNoSelections(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCakeService(db, 30000)

	order, err := svc.CreateCakeOrder(CakeOrderRequest{
		CustomerName:  "Carla Díaz",
		CustomerPhone: "+56933333333",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), order.ExtrasPriceCLP)
	assert.Equal(t, int64(30000), order.TotalPriceCLP)
}

func TestCreateCakeOrderErrors(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCakeService(db, 30000)

	size := seedCakeCategory(t, db, models.CakeCategorySize, "Tamaño", 1)
	retired := seedCakeOption(t, db, size.ID, "Retirado", 5000)
	require.NoError(t, db.Model(retired).Update("is_active", false).Error)

	t.Run("missing customer", func(t *testing.T) {
		_, err := svc.CreateCakeOrder(CakeOrderRequest{CustomerName: "  "})
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("unknown option", func(t *testing.T) {
		id := uuid.NewString()
		_, err := svc.CreateCakeOrder(CakeOrderRequest{
			CustomerName:  "Carla Díaz",
			CustomerPhone: "+56933333333",
			SizeOptionID:  &id,
		})
		var notFoundErr *NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("inactive option", func(t *testing.T) {
		_, err := svc.CreateCakeOrder(CakeOrderRequest{
			CustomerName:  "Carla Díaz",
			CustomerPhone: "+56933333333",
			SizeOptionID:  &retired.ID,
		})
		var inactiveErr *InactiveEntityError
		require.ErrorAs(t, err, &inactiveErr)
	})
}

func TestBuilderConfigFiltersInactive(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCakeService(db, 30000)

	size := seedCakeCategory(t, db, models.CakeCategorySize, "Tamaño", 1)
	hidden := seedCakeCategory(t, db, models.CakeCategoryLayers, "Pisos", 2)
	require.NoError(t, db.Model(hidden).Update("is_active", false).Error)
	seedCakeOption(t, db, size.ID, "10 personas", 0)
	gone := seedCakeOption(t, db, size.ID, "Descontinuado", 1000)
	require.NoError(t, db.Model(gone).Update("is_active", false).Error)

	config, err := svc.BuilderConfig()
	require.NoError(t, err)
	require.Len(t, config, 1)
	assert.Equal(t, models.CakeCategorySize, config[0].Type)
	require.Len(t, config[0].Options, 1)
	assert.Equal(t, "10 personas", config[0].Options[0].Label)
}

func TestCakeOrderStatusAdmin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCakeService(db, 30000)

	order, err := svc.CreateCakeOrder(CakeOrderRequest{
		CustomerName:  "Carla Díaz",
		CustomerPhone: "+56933333333",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateCakeOrderStatus(order.ID, models.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, updated.Status)

	_, err = svc.UpdateCakeOrderStatus(order.ID, "SHIPPED")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	confirmed, err := svc.ListCakeOrders(models.OrderStatusConfirmed)
	require.NoError(t, err)
	require.Len(t, confirmed, 1)

	none, err := svc.ListCakeOrders(models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCakeOptionAdmin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCakeService(db, 30000)

	size := seedCakeCategory(t, db, models.CakeCategorySize, "Tamaño", 1)

	label := "20 personas"
	extra := int64(8000)
	option, err := svc.CreateOption(CakeOptionInput{
		CategoryID:    size.ID,
		Label:         &label,
		ExtraPriceCLP: &extra,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8000), option.ExtraPriceCLP)

	newExtra := int64(9000)
	updated, err := svc.UpdateOption(option.ID, CakeOptionInput{ExtraPriceCLP: &newExtra})
	require.NoError(t, err)
	assert.Equal(t, int64(9000), updated.ExtraPriceCLP)

	negative := int64(-1)
	_, err = svc.CreateOption(CakeOptionInput{CategoryID: size.ID, Label: &label, ExtraPriceCLP: &negative})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	require.NoError(t, svc.DeleteOption(option.ID))
	var notFoundErr *NotFoundError
	err = svc.DeleteOption(option.ID)
	require.ErrorAs(t, err, &notFoundErr)
}
