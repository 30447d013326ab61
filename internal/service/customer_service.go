package service

import (
	"context"
	"strings"
	"time"

	"mealbox-be/internal/dto"
	"mealbox-be/internal/entity"
	"mealbox-be/internal/pkg/apperror"
	"mealbox-be/internal/pkg/logger"
	"mealbox-be/internal/pkg/mailer"
	"mealbox-be/internal/pkg/metrics"
	"mealbox-be/internal/repository/memory"
	"mealbox-be/internal/repository/specification"
	"mealbox-be/internal/repository/unitofwork"
	adminEvents "mealbox-be/pkg/admin/events"
	"mealbox-be/pkg/delivery"

	"github.com/google/uuid"
)

type ICustomerService interface {
	// CancelSubscription cancels the subscription and every open delivery
	// from today on. It is not recorded in the action log and cannot be
	// undone.
	CancelSubscription(ctx context.Context, userId, subscriptionId uuid.UUID, req dto.CustomerCancelRequest, now time.Time) (*dto.CustomerCancelResponse, error)
}

type customerService struct {
	uowFactory     unitofwork.RepositoryFactory
	engine         *delivery.Engine
	cache          *memory.StatusCache
	eventPublisher adminEvents.Publisher
	emailService   mailer.IEmailService
	metrics        metrics.Recorder
	logger         logger.ILogger
}

func NewCustomerService(
	uowFactory unitofwork.RepositoryFactory,
	engine *delivery.Engine,
	cache *memory.StatusCache,
	eventPublisher adminEvents.Publisher,
	emailService mailer.IEmailService,
	metrics metrics.Recorder,
	logger logger.ILogger,
) ICustomerService {
	return &customerService{
		uowFactory:     uowFactory,
		engine:         engine,
		cache:          cache,
		eventPublisher: eventPublisher,
		emailService:   emailService,
		metrics:        metrics,
		logger:         logger,
	}
}

func (s *customerService) CancelSubscription(ctx context.Context, userId, subscriptionId uuid.UUID, req dto.CustomerCancelRequest, now time.Time) (res *dto.CustomerCancelResponse, err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe(ctx, "customer_cancel", err, time.Since(start))
		logFailure(s.logger, "customer_cancel", userId.String(), err, map[string]interface{}{
			"subscription_id": subscriptionId.String(),
		})
	}()

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, apperror.NewValidationError("reason", "reason is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Wrap("customer_cancel: begin", err)
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindOne(ctx,
		specification.ByID{ID: subscriptionId},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, apperror.Wrap("customer_cancel: lock subscription", err)
	}
	if sub == nil || sub.UserId != userId {
		return nil, apperror.ErrNotFound
	}
	if sub.IsCancelled() {
		return nil, apperror.NewValidationError("subscription_id", "subscription is already cancelled")
	}

	rows, err := pendingDeliveries(ctx, uow, subscriptionId, s.engine.Today(now), true)
	if err != nil {
		return nil, apperror.Wrap("customer_cancel: lock deliveries", err)
	}

	// The gate is re-checked on the locked rows so a confirm_all racing the
	// request cannot slip a kitchen-bound delivery through.
	eligibility := s.engine.CanCancel(deliveryDates(rows), now)
	if !eligibility.Allowed {
		var blocking time.Time
		if eligibility.BlockingDate != nil {
			blocking = *eligibility.BlockingDate
		}
		return nil, &apperror.CutoffError{BlockingDate: blocking, Reason: eligibility.Reason}
	}

	stamp := entity.CancellationStamp{Reason: reason, At: now.UTC(), By: userId.String()}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.Id)
	}
	n, err := uow.DeliveryScheduleRepository().CancelLines(ctx, ids, stamp)
	if err != nil {
		return nil, apperror.Wrap("customer_cancel: cancel deliveries", err)
	}
	if _, err := uow.SubscriptionRepository().MarkCancelled(ctx, subscriptionId, stamp); err != nil {
		return nil, apperror.Wrap("customer_cancel: cancel subscription", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Wrap("customer_cancel: commit", err)
	}

	s.logger.Info("CUSTOMER", "Subscription cancelled by customer", map[string]interface{}{
		"subscription_id": subscriptionId.String(),
		"user_id":         userId.String(),
		"deliveries":      n,
	})
	s.cache.Delete(subscriptionId)
	s.metrics.RowsChanged("customer_cancel", int(n), 1)
	s.eventPublisher.PublishSubscriptionCancelled(ctx, subscriptionId, userId, reason, int(n))
	notifyCustomer(ctx, s.uowFactory, s.emailService, s.logger, sub.UserId, mailer.CancellationNotice{
		Reason:        reason,
		DeliveryDates: deliveryDates(rows),
	})

	return &dto.CustomerCancelResponse{
		SubscriptionId:     subscriptionId,
		DeliveriesCanceled: int(n),
		CancelledAt:        stamp.At,
	}, nil
}

// notifyCustomer looks up the subscriber and sends the notice. Failures are
// logged only; the cancellation has already been committed.
func notifyCustomer(ctx context.Context, uowFactory unitofwork.RepositoryFactory, email mailer.IEmailService, log logger.ILogger, userId uuid.UUID, notice mailer.CancellationNotice) {
	user, err := uowFactory.NewUnitOfWork(ctx).UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil || user == nil {
		log.Warn("CUSTOMER", "Cancellation notice skipped, user not found", map[string]interface{}{
			"user_id": userId.String(),
		})
		return
	}
	notice.CustomerName = user.FullName
	if err := email.SendCancellationNotice(user.Email, notice); err != nil {
		log.Error("CUSTOMER", "Cancellation notice failed", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
	}
}
