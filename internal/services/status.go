package services

import "github.com/hrcastell/Dulce-Maria-Reposteria/internal/models"

// Order lifecycle transitions. CANCELLED is reachable from every
// non-terminal state; DELIVERED and CANCELLED are terminal. Requests for
// anything outside this table are rejected with a ConflictError instead
// of being written through.
var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPendingPayment: {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed:      {models.OrderStatusPreparing, models.OrderStatusCancelled},
	models.OrderStatusPreparing:      {models.OrderStatusReady, models.OrderStatusCancelled},
	models.OrderStatusReady:          {models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusDelivered:      nil,
	models.OrderStatusCancelled:      nil,
}

// Payment status transitions, a parallel axis to the order lifecycle.
var paymentTransitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentStatusPending:  {models.PaymentStatusPaid, models.PaymentStatusFailed},
	models.PaymentStatusPaid:     {models.PaymentStatusRefunded},
	models.PaymentStatusFailed:   nil,
	models.PaymentStatusRefunded: nil,
}

// CanTransitionOrderStatus reports whether an order may move from one
// lifecycle state to another. Same-state requests are not transitions.
func CanTransitionOrderStatus(from, to models.OrderStatus) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanTransitionPaymentStatus reports whether the payment status may move
// from one state to another.
func CanTransitionPaymentStatus(from, to models.PaymentStatus) bool {
	for _, allowed := range paymentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
