package cnab

import "github.com/google/uuid"

// TypeCatalog is an immutable snapshot of the active transaction-type
// catalog, built once per import and shared read-only by the decoder.
//
// When several active rows share a business code the snapshot keeps the
// first one seen, so callers must supply rows in a deterministic order
// (the store lists them oldest first). Whether oldest-wins is the right
// business rule is still an open product question; it is a tie-break,
// not a guarantee.
type TypeCatalog struct {
	byCode map[int]uuid.UUID
}

// NewTypeCatalog builds a catalog from the given rows.
// Inactive rows are ignored.
func NewTypeCatalog(types []TransactionType) TypeCatalog {
	byCode := make(map[int]uuid.UUID, len(types))
	for _, t := range types {
		if !t.Active {
			continue
		}
		if _, ok := byCode[t.Code]; !ok {
			byCode[t.Code] = t.ID
		}
	}
	return TypeCatalog{byCode: byCode}
}

// Resolve returns the durable id for a business code.
func (c TypeCatalog) Resolve(code int) (uuid.UUID, bool) {
	id, ok := c.byCode[code]
	return id, ok
}

// Len returns the number of distinct resolvable codes.
func (c TypeCatalog) Len() int {
	return len(c.byCode)
}
