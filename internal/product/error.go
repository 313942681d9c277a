package product

import "mshop-be/internal/apperror"

var (
	ErrNameRequired  = apperror.InvalidRequest("product name is required")
	ErrInvalidPrice  = apperror.InvalidRequest("price must not be negative")
	ErrInvalidStock  = apperror.InvalidRequest("stock must not be negative")
	ErrNothingToSave = apperror.InvalidRequest("no fields to update")

	ErrForbidden       = apperror.Forbidden("admin role required")
	ErrProductNotFound = apperror.NotFound("product not found")
)
