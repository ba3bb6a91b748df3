package services

import (
	"testing"

	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanTransitionOrderStatus(t *testing.T) {
	testCases := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		allowed bool
	}{
		{"pending payment to confirmed", models.OrderStatusPendingPayment, models.OrderStatusConfirmed, true},
		{"pending payment to cancelled", models.OrderStatusPendingPayment, models.OrderStatusCancelled, true},
		{"pending payment skips to ready", models.OrderStatusPendingPayment, models.OrderStatusReady, false},
		{"confirmed to preparing", models.OrderStatusConfirmed, models.OrderStatusPreparing, true},
		{"confirmed skips to delivered", models.OrderStatusConfirmed, models.OrderStatusDelivered, false},
		{"preparing to ready", models.OrderStatusPreparing, models.OrderStatusReady, true},
		{"ready to delivered", models.OrderStatusReady, models.OrderStatusDelivered, true},
		{"ready to cancelled", models.OrderStatusReady, models.OrderStatusCancelled, true},
		{"delivered is terminal", models.OrderStatusDelivered, models.OrderStatusCancelled, false},
		{"cancelled is terminal", models.OrderStatusCancelled, models.OrderStatusConfirmed, false},
		{"no self transition", models.OrderStatusConfirmed, models.OrderStatusConfirmed, false},
		{"no backwards transition", models.OrderStatusReady, models.OrderStatusPreparing, false},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransitionOrderStatus(tt.from, tt.to))
		})
	}
}

func TestCanTransitionPaymentStatus(t *testing.T) {
	testCases := []struct {
		name    string
		from    models.PaymentStatus
		to      models.PaymentStatus
		allowed bool
	}{
		{"pending to paid", models.PaymentStatusPending, models.PaymentStatusPaid, true},
		{"pending to failed", models.PaymentStatusPending, models.PaymentStatusFailed, true},
		{"pending to refunded", models.PaymentStatusPending, models.PaymentStatusRefunded, false},
		{"paid to refunded", models.PaymentStatusPaid, models.PaymentStatusRefunded, true},
		{"paid back to pending", models.PaymentStatusPaid, models.PaymentStatusPending, false},
		{"failed is terminal", models.PaymentStatusFailed, models.PaymentStatusPaid, false},
		{"refunded is terminal", models.PaymentStatusRefunded, models.PaymentStatusPaid, false},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransitionPaymentStatus(tt.from, tt.to))
		})
	}
}
