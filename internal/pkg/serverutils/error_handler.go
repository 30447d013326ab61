package serverutils

import (
	"errors"

	"mealbox-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	var ve *apperror.ValidationError
	var ce *apperror.CutoffError
	var fe *fiber.Error
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.As(err, &ce):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrNotFound),
		errors.Is(err, apperror.ErrNoMatchingRows),
		errors.Is(err, apperror.ErrNoPendingUndo):
		return fiber.StatusNotFound
	case errors.Is(err, apperror.ErrUndoConflict),
		errors.Is(err, apperror.ErrInvalidTransition),
		apperror.IsSerializationFailure(err):
		return fiber.StatusConflict
	case errors.As(err, &fe):
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON
// envelope. Raw storage errors are replaced by a generic sentence.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code := StatusFor(err)
		message := apperror.UserMessage(err)
		var fe *fiber.Error
		if errors.As(err, &fe) && code == fe.Code {
			message = fe.Message
		}
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
