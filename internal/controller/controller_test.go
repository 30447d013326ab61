package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mealbox-be/internal/dto"
	"mealbox-be/internal/pkg/apperror"
	"mealbox-be/internal/pkg/serverutils"
	"mealbox-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type fakeStatus struct {
	service.IOrderStatusService
	gotUser uuid.UUID
}

func (f *fakeStatus) DeriveStatus(ctx context.Context, userId, subscriptionId uuid.UUID, now time.Time) (*dto.OrderStatusResponse, error) {
	f.gotUser = userId
	return &dto.OrderStatusResponse{SubscriptionId: subscriptionId, Status: "in_kitchen", Step: 2}, nil
}

type fakeCustomer struct {
	service.ICustomerService
	err error
}

func (f *fakeCustomer) CancelSubscription(ctx context.Context, userId, subscriptionId uuid.UUID, req dto.CustomerCancelRequest, now time.Time) (*dto.CustomerCancelResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.CustomerCancelResponse{SubscriptionId: subscriptionId, DeliveriesCanceled: 2}, nil
}

type fakeAdmin struct {
	service.IAdminOrderService
	actor string
}

func (f *fakeAdmin) ConfirmAllOrders(ctx context.Context, req dto.ConfirmAllRequest, actorId string) (*dto.TransitionResponse, error) {
	f.actor = actorId
	return &dto.TransitionResponse{Description: "Confirmed 1 orders for Saturday, 15 Mar 2025", RowsUpdated: 1}, nil
}

func (f *fakeAdmin) UndoLastAction(ctx context.Context, actorId string) (*dto.UndoResponse, error) {
	return nil, apperror.ErrNoPendingUndo
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newApp(customerErr error) (*fiber.App, *fakeStatus, *fakeAdmin) {
	status := &fakeStatus{}
	admin := &fakeAdmin{}
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewOrderController(status, &fakeCustomer{err: customerErr}, secret).RegisterRoutes(api)
	NewAdminOrderController(admin, secret).RegisterRoutes(api)
	return app, status, admin
}

func token(t *testing.T, userId, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func do(t *testing.T, app *fiber.App, method, path, tok, body string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	var env envelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	return resp.StatusCode, env
}

func TestOrderController_GetStatus(t *testing.T) {
	app, status, _ := newApp(nil)
	userId := uuid.New()
	subId := uuid.New()

	code, env := do(t, app, "GET", "/api/orders/"+subId.String()+"/status", token(t, userId.String(), "user"), "")
	require.Equal(t, 200, code)
	assert.True(t, env.Success)
	assert.Equal(t, userId, status.gotUser)
	assert.Contains(t, string(env.Data), `"in_kitchen"`)

	code, _ = do(t, app, "GET", "/api/orders/not-a-uuid/status", token(t, userId.String(), "user"), "")
	assert.Equal(t, 400, code)

	code, _ = do(t, app, "GET", "/api/orders/"+subId.String()+"/status", token(t, userId.String(), "rider"), "")
	assert.Equal(t, 403, code)
}

func TestOrderController_CancelMapsCutoffTo422(t *testing.T) {
	app, _, _ := newApp(&apperror.CutoffError{Reason: "the cutoff for 2025-03-15 has passed"})
	tok := token(t, uuid.NewString(), "user")
	path := "/api/orders/" + uuid.NewString() + "/cancel"

	code, env := do(t, app, "POST", path, tok, `{"reason":""}`)
	assert.Equal(t, 400, code)
	assert.False(t, env.Success)

	code, env = do(t, app, "POST", path, tok, `{"reason":"moving"}`)
	assert.Equal(t, 422, code)
	assert.Contains(t, env.Message, "the cutoff for 2025-03-15 has passed")
}

func TestAdminOrderController(t *testing.T) {
	app, _, admin := newApp(nil)
	tok := token(t, "admin-7", "admin")

	code, env := do(t, app, "POST", "/api/admin/orders/confirm-all", tok, `{"date":"2025-03-15"}`)
	require.Equal(t, 200, code)
	assert.Equal(t, "Confirmed 1 orders for Saturday, 15 Mar 2025", env.Message)
	assert.Equal(t, "admin-7", admin.actor)

	code, _ = do(t, app, "POST", "/api/admin/orders/confirm-all", tok, `{"date":"15-03-2025"}`)
	assert.Equal(t, 400, code)

	code, env = do(t, app, "POST", "/api/admin/orders/undo", tok, "")
	assert.Equal(t, 404, code)
	assert.Equal(t, "There is no action to undo.", env.Message)

	code, _ = do(t, app, "POST", "/api/admin/orders/confirm-all", token(t, "u1", "user"), `{"date":"2025-03-15"}`)
	assert.Equal(t, 403, code)
}
