package models

// APIError is the standardized error response body for the API.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error code constants
const (
	// General errors
	ErrBadRequest       = "BAD_REQUEST"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrForbidden        = "FORBIDDEN"
	ErrNotFound         = "NOT_FOUND"
	ErrConflict         = "CONFLICT"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrValidationFailed = "VALIDATION_FAILED"

	// Order/catalog-specific errors
	ErrInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrInactiveEntity     = "INACTIVE_ENTITY"
	ErrOwnershipMismatch  = "OWNERSHIP_MISMATCH"
	ErrIllegalTransition  = "ILLEGAL_STATUS_TRANSITION"
	ErrInvalidCredentials = "INVALID_CREDENTIALS"
)

// NewAPIError creates a new API error with the given code and message
func NewAPIError(code, message string, details ...map[string]interface{}) APIError {
	err := APIError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}
