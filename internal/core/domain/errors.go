package domain

import "errors"

// Sentinel errors for advocate operations.
var (
	// ErrMissingFields indicates a required field is absent or empty on create.
	// HTTP Status: 400 Bad Request
	ErrMissingFields = errors.New("all fields are required")

	// ErrInvalidPhoneNumber indicates the phone number is not a number.
	// HTTP Status: 400 Bad Request
	ErrInvalidPhoneNumber = errors.New("phone number must be a valid number")

	// ErrInvalidYearsOfExperience indicates years of experience is negative or fractional.
	// HTTP Status: 400 Bad Request
	ErrInvalidYearsOfExperience = errors.New("years of experience must be a positive integer")

	// ErrStoreUnavailable indicates the record store could not be reached.
	// HTTP Status: 500 Internal Server Error
	ErrStoreUnavailable = errors.New("record store not available")
)

// IsValidationError reports whether err is a client input error on create.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingFields) ||
		errors.Is(err, ErrInvalidPhoneNumber) ||
		errors.Is(err, ErrInvalidYearsOfExperience)
}
