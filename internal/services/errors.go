package services

import "fmt"

// ValidationError reports malformed input, caught before any transaction
// starts.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// OwnershipMismatchError reports a variant or topping that does not
// belong to the product stated in the same line.
type OwnershipMismatchError struct {
	Entity    string
	Name      string
	ProductID string
}

func (e *OwnershipMismatchError) Error() string {
	return fmt.Sprintf("%s %q does not belong to product %s", e.Entity, e.Name, e.ProductID)
}

// InactiveEntityError reports a deactivated product or variant.
type InactiveEntityError struct {
	Entity string
	Name   string
}

func (e *InactiveEntityError) Error() string {
	return fmt.Sprintf("%s %q is inactive", e.Entity, e.Name)
}

// InsufficientStockError reports a line whose combined requested quantity
// exceeds the authoritative available quantity. It carries enough detail
// for the caller to correct the request without a second round trip.
type InsufficientStockError struct {
	Name      string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.Name, e.Requested, e.Available)
}

// ConflictError reports an operation that clashes with existing state,
// like deleting a product with dependent order items or requesting an
// illegal status transition. Code optionally narrows the generic
// conflict code in the API response.
type ConflictError struct {
	Message string
	Code    string
}

func (e *ConflictError) Error() string { return e.Message }
