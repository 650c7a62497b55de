// Package store persists decoded CNAB batches and the transaction-type
// catalog in PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/cardstream/cnab-import/internal/cnab"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Tx is the transaction surface SaveBatch needs. pgx.Tx satisfies it.
type Tx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxBeginner opens a new transaction.
type TxBeginner interface {
	BeginTx(ctx context.Context) (Tx, error)
}

// pgxBeginner adapts a pgxpool.Pool to TxBeginner.
type pgxBeginner struct {
	pool *pgxpool.Pool
}

func (b pgxBeginner) BeginTx(ctx context.Context) (Tx, error) {
	return b.pool.Begin(ctx)
}

// ErrEmptyBatch is returned when SaveBatch is called with no records.
// The orchestrator guards against this; the check here keeps the
// all-or-nothing contract honest for any other caller.
var ErrEmptyBatch = errors.New("empty batch")

// TransactionStore reads the type catalog and writes transaction batches.
type TransactionStore struct {
	db    DBTX
	begin TxBeginner
}

// NewTransactionStore creates a store backed by a pgx connection pool.
func NewTransactionStore(pool *pgxpool.Pool) *TransactionStore {
	return &TransactionStore{
		db:    pool,
		begin: pgxBeginner{pool: pool},
	}
}

const listActiveTypesSQL = `
	SELECT id, code, description, active
	FROM transaction_types
	WHERE active
	ORDER BY created_at, id`

// ListActiveTypes returns every active transaction type, oldest first.
// The ordering makes duplicate-code resolution in the catalog snapshot
// deterministic.
func (s *TransactionStore) ListActiveTypes(ctx context.Context) ([]cnab.TransactionType, error) {
	rows, err := s.db.Query(ctx, listActiveTypesSQL)
	if err != nil {
		return nil, fmt.Errorf("query transaction types: %w", err)
	}
	defer rows.Close()

	var types []cnab.TransactionType
	for rows.Next() {
		var (
			id   pgtype.UUID
			t    cnab.TransactionType
			desc pgtype.Text
		)
		if err := rows.Scan(&id, &t.Code, &desc, &t.Active); err != nil {
			return nil, fmt.Errorf("scan transaction type: %w", err)
		}
		t.ID = uuid.UUID(id.Bytes)
		t.Description = desc.String
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transaction type rows: %w", err)
	}

	return types, nil
}

const insertTransactionSQL = `
	INSERT INTO transactions (
		id, type_id, occurred_at, amount, cpf, card,
		owner_name, store_name, created_at, updated_at, updated_by
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// SaveBatch writes all records inside a single transaction. Any insert
// failure rolls back the whole batch; no partial write is ever visible
// to other connections. Returns the number of records written.
func (s *TransactionStore) SaveBatch(ctx context.Context, records []cnab.Record) (int, error) {
	if len(records) == 0 {
		return 0, ErrEmptyBatch
	}

	tx, err := s.begin.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	// No-op after a successful commit.
	defer tx.Rollback(ctx)

	for i, rec := range records {
		_, err := tx.Exec(ctx, insertTransactionSQL,
			toPgUUID(rec.ID),
			toPgUUID(rec.TypeID),
			rec.OccurredAt,
			toPgNumeric(rec.Amount),
			rec.PayerID,
			rec.Card,
			rec.OwnerName,
			rec.StoreName,
			rec.ImportedAt,
			rec.ImportedAt,
			rec.ImportedBy,
		)
		if err != nil {
			return 0, fmt.Errorf("insert transaction %d of %d: %w", i+1, len(records), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit batch: %w", err)
	}
	return len(records), nil
}

// toPgUUID converts a uuid.UUID to pgtype.UUID.
func toPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// toPgNumeric converts a decimal amount to pgtype.Numeric via its exact
// string form, never through a float.
func toPgNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{Valid: false}
	}
	return n
}
