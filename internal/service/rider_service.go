package service

import (
	"context"
	"time"

	"mealbox-be/internal/dto"
	"mealbox-be/internal/entity"
	"mealbox-be/internal/pkg/apperror"
	"mealbox-be/internal/pkg/logger"
	"mealbox-be/internal/pkg/metrics"
	"mealbox-be/internal/repository/memory"
	"mealbox-be/internal/repository/unitofwork"
	adminEvents "mealbox-be/pkg/admin/events"
	"mealbox-be/pkg/admin/orders"
	"mealbox-be/pkg/orderstatus"

	"github.com/google/uuid"
)

// IRiderService moves single deliveries along for riders and the kitchen.
// Each step is logged under the actor so it can be undone like a bulk
// action.
type IRiderService interface {
	AdvanceDelivery(ctx context.Context, scheduleId uuid.UUID, req dto.AdvanceDeliveryRequest, actorId string) (*dto.TransitionResponse, error)
	UndoLast(ctx context.Context, actorId string) (*dto.UndoResponse, error)
}

type riderService struct {
	uowFactory     unitofwork.RepositoryFactory
	manager        *orders.Manager
	cache          *memory.StatusCache
	eventPublisher adminEvents.Publisher
	metrics        metrics.Recorder
	logger         logger.ILogger
}

func NewRiderService(
	uowFactory unitofwork.RepositoryFactory,
	manager *orders.Manager,
	cache *memory.StatusCache,
	eventPublisher adminEvents.Publisher,
	metrics metrics.Recorder,
	logger logger.ILogger,
) IRiderService {
	return &riderService{
		uowFactory:     uowFactory,
		manager:        manager,
		cache:          cache,
		eventPublisher: eventPublisher,
		metrics:        metrics,
		logger:         logger,
	}
}

func (s *riderService) AdvanceDelivery(ctx context.Context, scheduleId uuid.UUID, req dto.AdvanceDeliveryRequest, actorId string) (out *dto.TransitionResponse, err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe(ctx, string(entity.ActionAdvanceDelivery), err, time.Since(start))
		logFailure(s.logger, string(entity.ActionAdvanceDelivery), actorId, err, map[string]interface{}{
			"schedule_id": scheduleId.String(),
			"status":      req.Status,
		})
	}()

	to, ok := orderstatus.ParseWorkflow(req.Status)
	if !ok {
		return nil, apperror.NewValidationError("status", "unknown workflow status")
	}

	res, err := retry(ctx, s.logger, "advance_delivery", func() (*orders.TransitionResult, error) {
		return s.manager.AdvanceDelivery(ctx, s.uowFactory.NewUnitOfWork(ctx), scheduleId, to, actorId)
	})
	if err != nil {
		return nil, err
	}

	var subscriptionId uuid.UUID
	if len(res.SubscriptionIds) > 0 {
		subscriptionId = res.SubscriptionIds[0]
		s.cache.Delete(subscriptionId)
	}
	s.metrics.RowsChanged(string(entity.ActionAdvanceDelivery), res.RowsUpdated, res.SubscriptionsUpdated)
	s.eventPublisher.PublishDeliveryAdvanced(ctx, res.ActionId, scheduleId, subscriptionId, actorId, string(to))

	return toTransitionResponse(res), nil
}

func (s *riderService) UndoLast(ctx context.Context, actorId string) (out *dto.UndoResponse, err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe(ctx, "undo", err, time.Since(start))
		logFailure(s.logger, "undo", actorId, err, nil)
	}()

	res, err := retry(ctx, s.logger, "undo", func() (*orders.UndoResult, error) {
		return s.manager.UndoLast(ctx, s.uowFactory.NewUnitOfWork(ctx), actorId)
	})
	if err != nil {
		return nil, err
	}

	for _, id := range res.SubscriptionIds {
		s.cache.Delete(id)
	}
	s.metrics.RowsChanged("undo", res.RowsRestored, res.SubscriptionsRestored)
	s.eventPublisher.PublishActionUndone(ctx, res.ActionId, string(res.ActionType), actorId, res.RowsRestored, res.SubscriptionsRestored)

	return toUndoResponse(res), nil
}
