// Package apperror is the error taxonomy shared by services, controllers and
// the operator CLI.
package apperror

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNoMatchingRows: the transition found nothing eligible to change.
	ErrNoMatchingRows = errors.New("no matching rows")
	// ErrNoPendingUndo: there is nothing left to undo, as opposed to an undo
	// that was attempted and failed.
	ErrNoPendingUndo = errors.New("no pending action to undo")
	// ErrUndoConflict: a captured row changed after the action and restoring
	// it would overwrite newer work.
	ErrUndoConflict = errors.New("rows changed since the action was recorded")

	ErrInvalidTransition  = errors.New("invalid workflow transition")
	ErrNotFound           = errors.New("not found")
	ErrCancellationClosed = errors.New("cancellation window closed")
)

// ValidationError is returned before any database access.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// TransactionError wraps any storage failure inside a transaction. The
// transaction has been rolled back by the time the caller sees it.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: transaction failed: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// Wrap turns a storage error into a TransactionError, leaving taxonomy errors
// untouched.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var te *TransactionError
	var ce *CutoffError
	switch {
	case errors.As(err, &ve), errors.As(err, &te), errors.As(err, &ce):
		return err
	case errors.Is(err, ErrNoMatchingRows),
		errors.Is(err, ErrNoPendingUndo),
		errors.Is(err, ErrUndoConflict),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrNotFound):
		return err
	}
	return &TransactionError{Op: op, Err: err}
}

// CutoffError blocks a customer cancellation.
type CutoffError struct {
	BlockingDate time.Time
	Reason       string
}

func (e *CutoffError) Error() string {
	return fmt.Sprintf("cancellation not allowed: %s", e.Reason)
}

func (e *CutoffError) Unwrap() error {
	return ErrCancellationClosed
}

// IsSerializationFailure reports lock and serialization conflicts that are
// safe to retry as a whole transaction.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}

// UserMessage is the sentence shown to an operator or customer. Raw storage
// errors never leak through it.
func UserMessage(err error) string {
	var ve *ValidationError
	var ce *CutoffError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &ce):
		return "Cancellation is no longer possible: " + ce.Reason
	case errors.Is(err, ErrNoMatchingRows):
		return "Nothing to update: no orders match the requested state."
	case errors.Is(err, ErrNoPendingUndo):
		return "There is no action to undo."
	case errors.Is(err, ErrUndoConflict):
		return "Undo failed: some orders have changed since that action. Nothing was restored."
	case errors.Is(err, ErrInvalidTransition):
		return "That status change is not allowed from the current state."
	case errors.Is(err, ErrNotFound):
		return "The requested record was not found."
	case IsSerializationFailure(err):
		return "Another operator is updating the same orders. Please retry."
	}
	return "The operation failed and no changes were saved. Please try again."
}
