package metrics

import (
	"errors"

	"mealbox-be/internal/pkg/apperror"
)

// Outcome buckets an error into a low-cardinality label.
func Outcome(err error) string {
	var ve *apperror.ValidationError
	var ce *apperror.CutoffError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &ve):
		return "invalid"
	case errors.As(err, &ce):
		return "cutoff"
	case errors.Is(err, apperror.ErrNoMatchingRows):
		return "no_rows"
	case errors.Is(err, apperror.ErrNoPendingUndo):
		return "no_pending_undo"
	case errors.Is(err, apperror.ErrUndoConflict):
		return "conflict"
	case errors.Is(err, apperror.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, apperror.ErrNotFound):
		return "not_found"
	}
	return "error"
}
