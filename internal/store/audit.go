package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditStore appends import audit-log entries.
//
// Appends happen outside the batch transaction: an audit failure after a
// committed import must never undo the import, so callers treat Append as
// best effort.
type AuditStore struct {
	db DBTX
}

// NewAuditStore creates an audit store backed by a pgx connection pool.
func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{db: pool}
}

const insertAuditSQL = `
	INSERT INTO audit_log (id, user_id, message, created_at)
	VALUES ($1, $2, $3, $4)`

// Append writes one audit entry for userID.
func (a *AuditStore) Append(ctx context.Context, userID, message string) error {
	_, err := a.db.Exec(ctx, insertAuditSQL,
		toPgUUID(uuid.New()), userID, message, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}
