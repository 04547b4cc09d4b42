package gate

import "errors"

var (
	// ErrInvalidInput is returned when the request fails shape validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited is returned when the identifying key has too many
	// recent failed attempts
	ErrRateLimited = errors.New("too many failed attempts")

	// ErrUnauthorized is returned when no account matches the code
	ErrUnauthorized = errors.New("authorization code not found")

	// ErrInsufficientCredits is returned when the account has no credits left
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrReservationFailed is returned when the credit store or ledger
	// fails; the request must not proceed to classification
	ErrReservationFailed = errors.New("credit reservation failed")
)
