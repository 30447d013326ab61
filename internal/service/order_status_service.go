package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mealbox-be/internal/dto"
	"mealbox-be/internal/entity"
	"mealbox-be/internal/pkg/apperror"
	"mealbox-be/internal/pkg/logger"
	"mealbox-be/internal/pkg/metrics"
	"mealbox-be/internal/repository/memory"
	"mealbox-be/internal/repository/specification"
	"mealbox-be/internal/repository/unitofwork"
	"mealbox-be/pkg/delivery"
	"mealbox-be/pkg/orderstatus"

	"github.com/google/uuid"
)

type IOrderStatusService interface {
	// DeriveStatus answers for the subscription's owner only; anyone else
	// gets ErrNotFound.
	DeriveStatus(ctx context.Context, userId, subscriptionId uuid.UUID, now time.Time) (*dto.OrderStatusResponse, error)
	CanCustomerCancel(ctx context.Context, userId, subscriptionId uuid.UUID, now time.Time) (*dto.CancellationEligibilityResponse, error)
}

type orderStatusService struct {
	uowFactory unitofwork.RepositoryFactory
	engine     *delivery.Engine
	cache      *memory.StatusCache
	metrics    metrics.Recorder
	logger     logger.ILogger
}

func NewOrderStatusService(
	uowFactory unitofwork.RepositoryFactory,
	engine *delivery.Engine,
	cache *memory.StatusCache,
	metrics metrics.Recorder,
	logger logger.ILogger,
) IOrderStatusService {
	return &orderStatusService{
		uowFactory: uowFactory,
		engine:     engine,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}
}

func (s *orderStatusService) DeriveStatus(ctx context.Context, userId, subscriptionId uuid.UUID, now time.Time) (*dto.OrderStatusResponse, error) {
	entry, ok := s.cache.Get(subscriptionId)
	if !ok {
		var err error
		entry, err = s.loadInput(ctx, subscriptionId, now)
		if err != nil {
			if !errors.Is(err, apperror.ErrNotFound) {
				s.logger.Error("ORDER_STATUS", "Failed to load status facts", map[string]interface{}{
					"subscription_id": subscriptionId.String(),
					"error":           err.Error(),
				})
			}
			return nil, err
		}
		s.cache.Save(subscriptionId, entry)
	}
	if entry.OwnerId != userId {
		return nil, apperror.ErrNotFound
	}

	in := entry.Input
	in.Now = now
	res := s.engine.Derive(in)
	s.metrics.StatusDerived(string(res.Status))

	return toStatusResponse(subscriptionId, in.NextDelivery, res), nil
}

// loadInput gathers the stored facts the engine needs. Reads run outside a
// transaction; a derived status is advisory.
func (s *orderStatusService) loadInput(ctx context.Context, subscriptionId uuid.UUID, now time.Time) (memory.CachedStatus, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: subscriptionId})
	if err != nil {
		return memory.CachedStatus{}, err
	}
	if sub == nil {
		return memory.CachedStatus{}, apperror.ErrNotFound
	}

	entry := memory.CachedStatus{
		OwnerId: sub.UserId,
		Input:   delivery.Input{SubscriptionCancelled: sub.IsCancelled()},
	}
	if entry.Input.SubscriptionCancelled {
		return entry, nil
	}

	today := s.engine.Today(now)
	next, err := uow.DeliveryScheduleRepository().FindOne(ctx,
		specification.BySubscriptionID{SubscriptionID: subscriptionId},
		specification.DeliveryOnOrAfter{Date: today},
		specification.ByLineStatus{Status: orderstatus.LineScheduled},
		specification.OrderBy{Field: "delivery_date"},
	)
	if err != nil {
		return memory.CachedStatus{}, err
	}
	if next != nil {
		d := next.DeliveryDate
		entry.Input.NextDelivery = &d
	}

	order, err := uow.OrderRepository().FindOne(ctx,
		specification.BySubscriptionID{SubscriptionID: subscriptionId},
		specification.DeliveryOnOrAfter{Date: today},
		specification.OrderBy{Field: "delivery_date"},
	)
	if err != nil {
		return memory.CachedStatus{}, err
	}
	if order != nil {
		entry.Input.Order = &delivery.OrderSnapshot{
			Status:       string(order.Status),
			DeliveryDate: order.DeliveryDate,
		}
	}
	return entry, nil
}

func toStatusResponse(subscriptionId uuid.UUID, next *time.Time, res delivery.Result) *dto.OrderStatusResponse {
	out := &dto.OrderStatusResponse{
		SubscriptionId: subscriptionId,
		Status:         string(res.Status),
		Label:          orderstatus.Label(res.Status),
		Step:           orderstatus.Step(res.Status),
		IsTerminal:     res.IsTerminal,
		Source:         string(res.Source),
	}
	if next != nil {
		d := next.Format(dto.DateLayout)
		out.NextDeliveryDate = &d
	}
	if res.Windows != nil {
		out.Windows = &dto.DeliveryWindowsResponse{
			DeliveryDate:  res.Windows.DeliveryDate.Format(dto.DateLayout),
			Cutoff:        res.Windows.Cutoff,
			CookingStart:  res.Windows.CookingStart,
			DeliveryStart: res.Windows.DeliveryStart,
			DeliveryEnd:   res.Windows.DeliveryEnd,
		}
	}
	return out
}

func (s *orderStatusService) CanCustomerCancel(ctx context.Context, userId, subscriptionId uuid.UUID, now time.Time) (*dto.CancellationEligibilityResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: subscriptionId})
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.UserId != userId {
		return nil, apperror.ErrNotFound
	}
	if sub.IsCancelled() {
		return &dto.CancellationEligibilityResponse{
			SubscriptionId: subscriptionId,
			Allowed:        false,
			Reason:         "the subscription is already cancelled",
		}, nil
	}

	rows, err := pendingDeliveries(ctx, uow, subscriptionId, s.engine.Today(now), false)
	if err != nil {
		return nil, err
	}
	return toEligibilityResponse(subscriptionId, s.engine.CanCancel(deliveryDates(rows), now)), nil
}

// pendingDeliveries lists the still-open schedule rows dated on or after
// from. With lock set the rows are locked for the enclosing transaction.
func pendingDeliveries(ctx context.Context, uow unitofwork.UnitOfWork, subscriptionId uuid.UUID, from time.Time, lock bool) ([]*entity.DeliverySchedule, error) {
	specs := []specification.Specification{
		specification.BySubscriptionID{SubscriptionID: subscriptionId},
		specification.DeliveryOnOrAfter{Date: from},
		specification.ByLineStatus{Status: orderstatus.LineScheduled},
		specification.WorkflowNotTerminal{},
		specification.OrderBy{Field: "id"},
	}
	if lock {
		specs = append(specs, specification.ForUpdate{})
	}
	rows, err := uow.DeliveryScheduleRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending deliveries: %w", err)
	}
	return rows, nil
}

func deliveryDates(rows []*entity.DeliverySchedule) []time.Time {
	dates := make([]time.Time, 0, len(rows))
	for _, r := range rows {
		dates = append(dates, r.DeliveryDate)
	}
	return dates
}

func toEligibilityResponse(subscriptionId uuid.UUID, e delivery.Eligibility) *dto.CancellationEligibilityResponse {
	out := &dto.CancellationEligibilityResponse{
		SubscriptionId: subscriptionId,
		Allowed:        e.Allowed,
		Cutoff:         e.Cutoff,
		Reason:         e.Reason,
	}
	if e.BlockingDate != nil {
		d := e.BlockingDate.Format(dto.DateLayout)
		out.BlockingDate = &d
	}
	return out
}
