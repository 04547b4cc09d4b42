package attempt

import (
	"time"

	"github.com/google/uuid"
)

// FailedAttempt is one failed credential lookup. Rows are append-only;
// retention is an operational concern outside this service.
type FailedAttempt struct {
	ID         uuid.UUID `db:"id"`
	Identifier string    `db:"identifier"`
	CreatedAt  time.Time `db:"created_at"`
}
