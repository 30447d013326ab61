package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"mealbox-be/internal/entity"
	"mealbox-be/internal/repository/specification"
	"mealbox-be/pkg/delivery"
	"mealbox-be/pkg/orderstatus"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSubscription(t *testing.T, s *Store, workflow orderstatus.Workflow) *entity.Subscription {
	t.Helper()
	sub := &entity.Subscription{
		UserId:          uuid.New(),
		LifecycleStatus: orderstatus.LifecycleActive,
		WorkflowStatus:  workflow,
	}
	require.NoError(t, s.NewUnitOfWork(context.Background()).SubscriptionRepository().Create(context.Background(), sub))
	return sub
}

func TestStore_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	sub := seedSubscription(t, s, orderstatus.WorkflowOrderReceived)

	uow := s.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	n, err := uow.SubscriptionRepository().UpdateWorkflowStatus(ctx, []uuid.UUID{sub.Id}, orderstatus.WorkflowOrderReceived, orderstatus.WorkflowInKitchen)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, uow.Rollback())

	got, err := s.NewUnitOfWork(ctx).SubscriptionRepository().FindOne(ctx, specification.ByID{ID: sub.Id})
	require.NoError(t, err)
	assert.Equal(t, orderstatus.WorkflowOrderReceived, got.WorkflowStatus)
}

func TestStore_CommitPublishesWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	sub := seedSubscription(t, s, orderstatus.WorkflowOrderReceived)

	uow := s.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()
	_, err := uow.SubscriptionRepository().MarkCancelled(ctx, sub.Id, entity.CancellationStamp{Reason: "moving", At: time.Now(), By: "admin-1"})
	require.NoError(t, err)
	require.NoError(t, uow.Commit())

	got, err := s.NewUnitOfWork(ctx).SubscriptionRepository().FindOne(ctx, specification.ByID{ID: sub.Id})
	require.NoError(t, err)
	assert.Equal(t, orderstatus.LifecycleCancelled, got.LifecycleStatus)
	require.NotNil(t, got.CancellationReason)
	assert.Equal(t, "moving", *got.CancellationReason)
}

func TestStore_CommitFailureLeavesDataUntouched(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	sub := seedSubscription(t, s, orderstatus.WorkflowOrderReceived)
	s.FailOn("Commit", errors.New("connection reset"))

	uow := s.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	_, err := uow.SubscriptionRepository().UpdateWorkflowStatus(ctx, []uuid.UUID{sub.Id}, orderstatus.WorkflowOrderReceived, orderstatus.WorkflowInKitchen)
	require.NoError(t, err)
	assert.Error(t, uow.Commit())
	assert.Error(t, uow.Rollback(), "transaction is already closed")

	s.ClearFailures()
	got, err := s.NewUnitOfWork(ctx).SubscriptionRepository().FindOne(ctx, specification.ByID{ID: sub.Id})
	require.NoError(t, err)
	assert.Equal(t, orderstatus.WorkflowOrderReceived, got.WorkflowStatus)
}

func TestStore_ConfirmableOnJoinsSubscription(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	date := time.Date(2025, 3, 19, 0, 0, 0, 0, time.UTC)
	active := seedSubscription(t, s, orderstatus.WorkflowOrderReceived)
	kitchen := seedSubscription(t, s, orderstatus.WorkflowInKitchen)

	repo := s.NewUnitOfWork(ctx).DeliveryScheduleRepository()
	for _, subId := range []uuid.UUID{active.Id, kitchen.Id} {
		require.NoError(t, repo.Create(ctx, &entity.DeliverySchedule{
			SubscriptionId: subId,
			DeliveryDate:   date,
			Quantity:       1,
			LineStatus:     orderstatus.LineScheduled,
			WorkflowStatus: orderstatus.WorkflowOrderReceived,
		}))
	}

	rows, err := repo.FindAll(ctx, specification.ConfirmableOn{Date: date}, specification.ForUpdate{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, active.Id, rows[0].SubscriptionId)
}

func TestStore_DuplicateIdRejected(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	sub := seedSubscription(t, s, orderstatus.WorkflowOrderReceived)
	repo := s.NewUnitOfWork(ctx).DeliveryScheduleRepository()
	id := uuid.New()
	row := func() *entity.DeliverySchedule {
		return &entity.DeliverySchedule{
			Id:             id,
			SubscriptionId: sub.Id,
			DeliveryDate:   time.Date(2025, 3, 19, 0, 0, 0, 0, time.UTC),
			LineStatus:     orderstatus.LineScheduled,
			WorkflowStatus: orderstatus.WorkflowOrderReceived,
		}
	}
	require.NoError(t, repo.Create(ctx, row()))
	assert.Error(t, repo.Create(ctx, row()))
}

func TestStore_UnsupportedSpecification(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedSubscription(t, s, orderstatus.WorkflowOrderReceived)
	_, err := s.NewUnitOfWork(ctx).SubscriptionRepository().FindAll(ctx, specification.Filter("user_id", "x"))
	assert.Error(t, err)
}

func TestStore_ActionOrderingAndPaging(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := s.NewUnitOfWork(ctx).WorkflowActionRepository()
	base := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &entity.WorkflowAction{
			ActorId:    "admin-1",
			ActionType: entity.ActionConfirmAll,
			Status:     entity.ActionPending,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	rows, err := repo.FindAll(ctx,
		specification.ByActorID{ActorID: "admin-1"},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: 2},
	)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, base.Add(2*time.Minute), rows[0].CreatedAt)

	n, err := repo.SupersedePending(ctx, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestStatusCache(t *testing.T) {
	id := uuid.New()
	c := NewStatusCache(time.Minute)
	_, ok := c.Get(id)
	assert.False(t, ok)

	owner := uuid.New()
	c.Save(id, CachedStatus{OwnerId: owner, Input: delivery.Input{SubscriptionCancelled: true}})
	got, ok := c.Get(id)
	assert.True(t, ok)
	assert.Equal(t, owner, got.OwnerId)
	assert.True(t, got.Input.SubscriptionCancelled)

	c.Delete(id)
	_, ok = c.Get(id)
	assert.False(t, ok)
	c.Save(id, got)

	c.Flush()
	_, ok = c.Get(id)
	assert.False(t, ok)

	disabled := NewStatusCache(0)
	disabled.Save(id, CachedStatus{})
	_, ok = disabled.Get(id)
	assert.False(t, ok)
}
