package orders_test

import (
	"context"
	"math/rand"
	"os"
	"sync"
	"testing"
	"time"

	"mealbox-be/internal/entity"
	"mealbox-be/internal/pkg/apperror"
	"mealbox-be/internal/pkg/logger"
	"mealbox-be/internal/repository/specification"
	"mealbox-be/internal/repository/unitofwork"
	"mealbox-be/pkg/admin/orders"
	"mealbox-be/pkg/database"
	"mealbox-be/pkg/orderstatus"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real Postgres when DB_CONNECTION_STRING is set.
func newPostgresFactory(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("DB_CONNECTION_STRING not set")
	}
	db, err := database.NewGormDBFromDSN(dsn, database.Options{Quiet: true, MaxOpenConns: 8})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return unitofwork.NewRepositoryFactory(db)
}

// isolatedDate picks a far-future day so parallel runs do not share rows.
func isolatedDate() time.Time {
	return time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, rand.Intn(365*50))
}

func seedSubscriptions(t *testing.T, f unitofwork.RepositoryFactory, date time.Time, n int) []uuid.UUID {
	t.Helper()
	ctx := context.Background()
	uow := f.NewUnitOfWork(ctx)
	var ids []uuid.UUID
	for i := 0; i < n; i++ {
		u := &entity.User{Email: uuid.NewString() + "@it.local", FullName: "IT", Role: entity.UserRoleCustomer}
		require.NoError(t, uow.UserRepository().Create(ctx, u))
		sub := &entity.Subscription{
			UserId:          u.Id,
			LifecycleStatus: orderstatus.LifecycleActive,
			WorkflowStatus:  orderstatus.WorkflowOrderReceived,
		}
		require.NoError(t, uow.SubscriptionRepository().Create(ctx, sub))
		require.NoError(t, uow.DeliveryScheduleRepository().Create(ctx, &entity.DeliverySchedule{
			SubscriptionId: sub.Id,
			DeliveryDate:   date,
			Quantity:       1,
			LineStatus:     orderstatus.LineScheduled,
			WorkflowStatus: orderstatus.WorkflowOrderReceived,
		}))
		ids = append(ids, sub.Id)
	}
	return ids
}

func TestPostgres_ConcurrentConfirmAllIsAppliedOnce(t *testing.T) {
	f := newPostgresFactory(t)
	m := orders.NewManager(logger.NewNopLogger(), time.Hour)
	date := isolatedDate()
	seedSubscriptions(t, f, date, 3)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []*orders.TransitionResult
		errs    []error
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(actor string) {
			defer wg.Done()
			ctx := context.Background()
			res, err := m.ConfirmAll(ctx, f.NewUnitOfWork(ctx), date, actor)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			results = append(results, res)
		}(uuid.NewString())
	}
	wg.Wait()

	require.Len(t, results, 1)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], apperror.ErrNoMatchingRows)
	assert.Equal(t, 3, results[0].RowsUpdated)
}

func TestPostgres_UndoRestoresSnapshot(t *testing.T) {
	f := newPostgresFactory(t)
	ctx := context.Background()
	m := orders.NewManager(logger.NewNopLogger(), time.Hour)
	date := isolatedDate()
	subs := seedSubscriptions(t, f, date, 2)
	actor := uuid.NewString()

	res, err := m.CancelOrder(ctx, f.NewUnitOfWork(ctx), subs[0], "address unreachable", date, actor)
	require.NoError(t, err)
	assert.Equal(t, 1, res.RowsUpdated)

	undo, err := m.UndoLast(ctx, f.NewUnitOfWork(ctx), actor)
	require.NoError(t, err)
	assert.Equal(t, res.ActionId, undo.ActionId)

	uow := f.NewUnitOfWork(ctx)
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: subs[0]})
	require.NoError(t, err)
	assert.Equal(t, orderstatus.LifecycleActive, sub.LifecycleStatus)
	assert.Nil(t, sub.CancellationReason)

	rows, err := uow.DeliveryScheduleRepository().FindAll(ctx,
		specification.BySubscriptionID{SubscriptionID: subs[0]},
		specification.ByDeliveryDate{Date: date},
	)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, orderstatus.WorkflowOrderReceived, rows[0].WorkflowStatus)
	assert.Nil(t, rows[0].CancelledAt)

	_, err = m.UndoLast(ctx, f.NewUnitOfWork(ctx), actor)
	assert.ErrorIs(t, err, apperror.ErrNoPendingUndo)
}
