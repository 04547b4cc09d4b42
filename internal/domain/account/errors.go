package account

import "errors"

var (
	// ErrNotFound is returned when no account matches the code
	ErrNotFound = errors.New("account not found")

	// ErrAlreadyExists is returned when provisioning a code twice
	ErrAlreadyExists = errors.New("account already exists")

	// ErrInvalidAmount is returned when a grant amount is <= 0
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	ErrInternal = errors.New("internal error")
)
