package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"mealbox-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperror.NewValidationError("reason", "is required"), 400},
		{"cutoff", &apperror.CutoffError{Reason: "late"}, 422},
		{"not found", apperror.ErrNotFound, 404},
		{"no rows wrapped", fmt.Errorf("confirm: %w", apperror.ErrNoMatchingRows), 404},
		{"no undo", apperror.ErrNoPendingUndo, 404},
		{"conflict", apperror.ErrUndoConflict, 409},
		{"transition", apperror.ErrInvalidTransition, 409},
		{"transaction", &apperror.TransactionError{Op: "x", Err: errors.New("boom")}, 500},
		{"fiber", fiber.ErrUnauthorized, 401},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

type body struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func decode(t *testing.T, r io.Reader) body {
	t.Helper()
	var b body
	require.NoError(t, json.NewDecoder(r).Decode(&b))
	return b
}

func TestErrorHandlerMiddleware_HidesStorageErrors(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/fail", func(ctx *fiber.Ctx) error {
		return &apperror.TransactionError{Op: "confirm_all", Err: errors.New("pq: relation does not exist")}
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/fail", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	b := decode(t, resp.Body)
	assert.False(t, b.Success)
	assert.NotContains(t, b.Message, "pq:")
}

func TestValidateRequest(t *testing.T) {
	type req struct {
		Reason string `json:"reason" validate:"required"`
		Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	}

	err := ValidateRequest(req{Date: "2025-03-15"})
	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "reason", ve.Field)

	err = ValidateRequest(req{Reason: "x", Date: "15/03/2025"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "date", ve.Field)

	assert.NoError(t, ValidateRequest(req{Reason: "x", Date: "2025-03-15"}))
}

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJwtMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", JwtMiddleware("secret", RoleAdmin), func(ctx *fiber.Ctx) error {
		return ctx.SendString(ActorID(ctx) + "/" + Role(ctx))
	})

	exp := time.Now().Add(time.Hour).Unix()
	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing", "", 401},
		{"bad signature", sign(t, "other", jwt.MapClaims{"user_id": "u1", "role": "admin", "exp": exp}), 401},
		{"wrong role", sign(t, "secret", jwt.MapClaims{"user_id": "u1", "role": "rider", "exp": exp}), 403},
		{"no role defaults to user", sign(t, "secret", jwt.MapClaims{"user_id": "u1", "exp": exp}), 403},
		{"admin", sign(t, "secret", jwt.MapClaims{"user_id": "u1", "role": "admin", "exp": exp}), 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.want == 200 {
				b, _ := io.ReadAll(resp.Body)
				assert.Equal(t, "u1/admin", string(b))
			}
		})
	}
}
