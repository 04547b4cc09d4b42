package account

import "time"

// CreditAccount is a provisioned authorization code with a remaining
// credit balance. Codes are stored sanitized.
type CreditAccount struct {
	Code      string    `db:"code" json:"code"`
	Credits   int       `db:"credits" json:"credits"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
