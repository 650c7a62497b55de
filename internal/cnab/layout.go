// Package cnab decodes CNAB fixed-width transaction files.
// This package has no storage dependencies and can be tested in isolation.
package cnab

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineLength is the minimum number of characters a line must have to carry
// every field of the layout. Shorter lines are skipped, not decoded.
const LineLength = 81

// Field offsets and lengths within a CNAB line (0-based byte positions).
const (
	offType   = 0
	lenType   = 1
	offDate   = 1
	lenDate   = 8
	offAmount = 9
	lenAmount = 10
	offPayer  = 19
	lenPayer  = 11
	offCard   = 30
	lenCard   = 12
	offTime   = 42
	lenTime   = 6
	offOwner  = 48
	lenOwner  = 14
	offStore  = 62
	lenStore  = 19
)

const (
	dateLayout = "20060102"
	timeLayout = "150405"
)

// Record is one decoded CNAB transaction, owned by the batch until persisted.
type Record struct {
	ID         uuid.UUID
	TypeID     uuid.UUID // resolved durable transaction-type id
	TypeCode   int       // business code as it appeared on the line
	OccurredAt time.Time // date + time of day from the line, UTC
	Amount     decimal.Decimal
	PayerID    string // CPF, 11 chars
	Card       string // card fragment, 12 chars
	OwnerName  string
	StoreName  string
	ImportedAt time.Time
	ImportedBy string // importing user id
}

// TransactionType is one row of the transaction-type catalog.
type TransactionType struct {
	ID          uuid.UUID
	Code        int
	Description string
	Active      bool
}
