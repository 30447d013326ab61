package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"mealbox-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "invalid", Outcome(apperror.NewValidationError("date", "is required")))
	assert.Equal(t, "no_rows", Outcome(apperror.ErrNoMatchingRows))
	assert.Equal(t, "conflict", Outcome(apperror.ErrUndoConflict))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}

func TestPrometheusRecorder(t *testing.T) {
	r := NewPrometheusRecorder()
	r.Observe(context.Background(), "confirm_all", nil, 20*time.Millisecond)
	r.Observe(context.Background(), "confirm_all", apperror.ErrNoMatchingRows, time.Millisecond)
	r.RowsChanged("confirm_all", 40, 12)
	r.StatusDerived("in_kitchen")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.ops.WithLabelValues("confirm_all", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ops.WithLabelValues("confirm_all", "no_rows")))
	assert.Equal(t, 40.0, testutil.ToFloat64(r.rows.WithLabelValues("confirm_all", "delivery_schedules")))
	assert.Equal(t, 12.0, testutil.ToFloat64(r.rows.WithLabelValues("confirm_all", "subscriptions")))

	app := fiber.New()
	app.Get("/metrics", r.Handler())
	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "mealbox_status_derivations_total")
}
