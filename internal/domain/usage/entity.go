package usage

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one audited categorization request. Only the derived result
// is stored; the PDF itself is never persisted.
type Entry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	AuthCode    string    `db:"auth_code" json:"auth_code"`
	Category    string    `db:"category" json:"category"`
	CreditsLeft int       `db:"credits_left" json:"credits_left"`
	Success     bool      `db:"success" json:"success"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
