package user

import "mshop-be/internal/apperror"

var (
	// -- Validation & Input --
	ErrNameRequired     = apperror.InvalidRequest("name is required")
	ErrInvalidEmail     = apperror.InvalidRequest("a valid email is required")
	ErrPasswordTooShort = apperror.InvalidRequest("password must be at least 6 characters")
	ErrInvalidRole      = apperror.InvalidRequest("invalid role")

	// -- Authentication/Authorization --
	ErrInvalidCredentials = apperror.Unauthorized("invalid email or password")
	ErrInvalidToken       = apperror.Unauthorized("invalid or expired token")
	ErrInactiveUser       = apperror.Unauthorized("account is disabled")
	ErrForbidden          = apperror.Forbidden("not allowed to manage this user")

	// -- Resource State --
	ErrUserNotFound = apperror.NotFound("user not found")
	ErrEmailExists  = apperror.Conflict("email already registered")

	// -- Constants (External Systems) --
	PgUniqueViolation = "23505"
)

const minPasswordLength = 6
