package order

import "mshop-be/internal/apperror"

var (
	// -- Validation --
	ErrEmptyItems      = apperror.InvalidRequest("order must contain at least one item")
	ErrMissingAddress  = apperror.InvalidRequest("shipping address is required")
	ErrInvalidQuantity = apperror.InvalidRequest("item quantity must be greater than zero")
	ErrInvalidPrice    = apperror.InvalidRequest("item price must not be negative")
	ErrInvalidStatus   = apperror.InvalidRequest("invalid order status")
	ErrNothingToUpdate = apperror.InvalidRequest("no fields to update")
	ErrUnknownProduct  = apperror.InvalidRequest("product does not exist or is unavailable")

	// -- Stock --
	ErrInsufficientStock = apperror.Conflict("insufficient stock")

	// -- Access --
	ErrForbidden     = apperror.Forbidden("not allowed to modify this order")
	ErrOrderNotFound = apperror.NotFound("order not found")
)
