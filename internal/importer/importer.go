// Package importer orchestrates a CNAB file import: precondition checks,
// catalog load, line-by-line decoding and the atomic batch write.
package importer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cardstream/cnab-import/internal/cnab"
	"github.com/cardstream/cnab-import/internal/logging"
)

// uploadContext is the error context reported for file-level failures,
// matching what API clients already key their validation feedback on.
const uploadContext = "UploadFileWithTransactions"

// Phase labels the orchestrator's progress in log entries.
type Phase string

const (
	PhaseValidating Phase = "validating"
	PhaseDecoding   Phase = "decoding"
	PhaseWriting    Phase = "writing"
	PhaseCommitted  Phase = "committed"
	PhaseAborted    Phase = "aborted"
)

// ImportError is one client-visible failure: Context names the operation
// or offending line, Message says what went wrong.
type ImportError struct {
	Context string `json:"context"`
	Message string `json:"message"`
}

// Outcome is the aggregate result of one import call.
type Outcome struct {
	Success   bool          `json:"success"`
	Written   int           `json:"written"`
	LinesRead int           `json:"linesRead"`
	Errors    []ImportError `json:"errors,omitempty"`
}

// Store is the persistence surface the orchestrator needs.
type Store interface {
	ListActiveTypes(ctx context.Context) ([]cnab.TransactionType, error)
	SaveBatch(ctx context.Context, records []cnab.Record) (int, error)
}

// AuditLog appends best-effort audit entries.
type AuditLog interface {
	Append(ctx context.Context, userID, message string) error
}

// Importer runs CNAB imports. Safe for concurrent use; parallel imports
// are bounded by the limiter and isolated by the store's transaction scope.
type Importer struct {
	store   Store
	audit   AuditLog
	limiter *Limiter
	now     func() time.Time
}

// New creates an Importer bounded to maxConcurrent parallel imports.
func New(store Store, audit AuditLog, maxConcurrent int, maxWait time.Duration) *Importer {
	return &Importer{
		store:   store,
		audit:   audit,
		limiter: NewLimiter(maxConcurrent, maxWait),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WaitForImports blocks until in-flight imports finish, for shutdown.
func (imp *Importer) WaitForImports(ctx context.Context) error {
	return imp.limiter.WaitForDrain(ctx)
}

// ActiveImports returns the number of imports currently running.
func (imp *Importer) ActiveImports() int {
	return imp.limiter.ActiveCount()
}

// Import runs one CNAB import end to end: reject empty files, decode every
// line with per-line failure isolation, persist the decoded batch in a
// single transaction, then append an audit entry. It never returns an
// error; every failure mode is folded into the Outcome.
func (imp *Importer) Import(ctx context.Context, file io.Reader, size int64, fileName, userID, userName string) Outcome {
	log := logging.WithFields(ctx,
		"file", fileName,
		"user_id", userID,
	)

	if err := imp.limiter.Acquire(ctx); err != nil {
		log.Warn("import rejected", "phase", PhaseValidating, "error", err)
		return aborted(ImportError{Context: uploadContext, Message: err.Error()})
	}
	defer imp.limiter.Release()

	log.Info("import started", "phase", PhaseValidating, "size", size)

	if size == 0 {
		log.Warn("import aborted", "phase", PhaseAborted, "reason", "empty file")
		return aborted(ImportError{Context: uploadContext, Message: "File empty."})
	}

	types, err := imp.store.ListActiveTypes(ctx)
	if err != nil {
		log.Error("import aborted", "phase", PhaseAborted, "error", err)
		return aborted(ImportError{
			Context: uploadContext,
			Message: fmt.Sprintf("load transaction types: %v", err),
		})
	}

	dec := cnab.Decoder{
		Catalog: cnab.NewTypeCatalog(types),
		Now:     imp.now(),
		UserID:  userID,
	}

	batch, err := cnab.Collect(file, dec)
	if err != nil {
		log.Error("import aborted", "phase", PhaseAborted, "error", err)
		out := aborted(ImportError{Context: uploadContext, Message: err.Error()})
		out.LinesRead = batch.LinesRead
		return out
	}

	outcome := Outcome{LinesRead: batch.LinesRead}
	for _, lineErr := range batch.Errors {
		outcome.Errors = append(outcome.Errors, ImportError{
			Context: lineErr.Line,
			Message: lineErr.Reason,
		})
	}

	log.Info("file decoded",
		"phase", PhaseDecoding,
		"lines", batch.LinesRead,
		"records", len(batch.Records),
		"failed", len(batch.Errors),
		"skipped", batch.Skipped(),
	)

	if len(batch.Records) == 0 {
		log.Warn("import aborted", "phase", PhaseAborted, "reason", "no transactions read")
		outcome.Errors = append(outcome.Errors, ImportError{
			Context: uploadContext,
			Message: "No transactions read.",
		})
		return outcome
	}

	log.Info("writing batch", "phase", PhaseWriting, "records", len(batch.Records))

	written, err := imp.store.SaveBatch(ctx, batch.Records)
	if err != nil {
		// The whole batch rolled back; report one aggregate failure and
		// keep the per-line errors for context.
		log.Error("import aborted", "phase", PhaseAborted, "error", err)
		outcome.Errors = append(outcome.Errors, ImportError{
			Context: uploadContext,
			Message: fmt.Sprintf("persist transactions: %v", err),
		})
		return outcome
	}

	outcome.Success = true
	outcome.Written = written
	log.Info("import committed", "phase", PhaseCommitted, "written", written)

	// Best effort: the batch is committed, a lost audit row stays lost.
	msg := fmt.Sprintf("User %s uploaded file %s.", userID, fileName)
	if err := imp.audit.Append(ctx, userID, msg); err != nil {
		log.Error("audit append failed", "error", err)
	}

	return outcome
}

func aborted(errs ...ImportError) Outcome {
	return Outcome{Success: false, Errors: errs}
}
