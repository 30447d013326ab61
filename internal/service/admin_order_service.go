package service

import (
	"context"
	"errors"
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
	"mealbox-be/pkg/admin/orders"
	"mealbox-be/pkg/orderstatus"

	"github.com/google/uuid"
)

// maxAttempts bounds retries of a transition that lost a lock or
// serialization race. Each attempt is a fresh transaction.
const maxAttempts = 3

type IAdminOrderService interface {
	ConfirmAllOrders(ctx context.Context, req dto.ConfirmAllRequest, actorId string) (*dto.TransitionResponse, error)
	CancelOrder(ctx context.Context, req dto.CancelOrderRequest, actorId string) (*dto.TransitionResponse, error)
	UndoLastAction(ctx context.Context, actorId string) (*dto.UndoResponse, error)
	UndoAction(ctx context.Context, actionId uuid.UUID, actorId string) (*dto.UndoResponse, error)
	ListActions(ctx context.Context, actorId string, limit int) ([]*dto.WorkflowActionResponse, error)
	ListDeliveries(ctx context.Context, date string) (*dto.DeliveryListResponse, error)

	// Logs
	GetSystemLogs(ctx context.Context, page, limit int, level, module string) ([]*dto.LogListResponse, error)
	GetLogDetail(ctx context.Context, logId string) (*dto.LogDetailResponse, error)
}

type adminOrderService struct {
	uowFactory     unitofwork.RepositoryFactory
	manager        *orders.Manager
	cache          *memory.StatusCache
	eventPublisher adminEvents.Publisher
	emailService   mailer.IEmailService
	metrics        metrics.Recorder
	logger         logger.ILogger
}

func NewAdminOrderService(
	uowFactory unitofwork.RepositoryFactory,
	manager *orders.Manager,
	cache *memory.StatusCache,
	eventPublisher adminEvents.Publisher,
	emailService mailer.IEmailService,
	metrics metrics.Recorder,
	logger logger.ILogger,
) IAdminOrderService {
	return &adminOrderService{
		uowFactory:     uowFactory,
		manager:        manager,
		cache:          cache,
		eventPublisher: eventPublisher,
		emailService:   emailService,
		metrics:        metrics,
		logger:         logger,
	}
}

func parseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(dto.DateLayout, value)
	if err != nil {
		return time.Time{}, apperror.NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

// retry reruns fn while it fails on a lock or serialization conflict.
func retry[T any](ctx context.Context, log logger.ILogger, op string, fn func() (T, error)) (T, error) {
	var (
		res T
		err error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err = fn()
		if err == nil || !apperror.IsSerializationFailure(err) || ctx.Err() != nil {
			return res, err
		}
		log.Warn("ORDER_WORKFLOW", "Transaction conflict, retrying", map[string]interface{}{
			"operation": op,
			"attempt":   attempt,
		})
	}
	return res, err
}

// logFailure records a rolled-back transaction with its raw cause. Taxonomy
// errors are expected outcomes and stay out of the error log.
func logFailure(log logger.ILogger, op, actorId string, err error, details map[string]interface{}) {
	var te *apperror.TransactionError
	if !errors.As(err, &te) {
		return
	}
	if details == nil {
		details = make(map[string]interface{})
	}
	details["operation"] = op
	details["actor_id"] = actorId
	details["error"] = err.Error()
	log.Error("ORDER_WORKFLOW", "Transaction rolled back", details)
}

// ============================================================================
// Bulk transitions
// ============================================================================

func (s *adminOrderService) ConfirmAllOrders(ctx context.Context, req dto.ConfirmAllRequest, actorId string) (out *dto.TransitionResponse, err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe(ctx, string(entity.ActionConfirmAll), err, time.Since(start))
		logFailure(s.logger, string(entity.ActionConfirmAll), actorId, err, map[string]interface{}{"date": req.Date})
	}()

	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}

	res, err := retry(ctx, s.logger, "confirm_all", func() (*orders.TransitionResult, error) {
		return s.manager.ConfirmAll(ctx, s.uowFactory.NewUnitOfWork(ctx), date, actorId)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Flush()
	s.metrics.RowsChanged(string(entity.ActionConfirmAll), res.RowsUpdated, res.SubscriptionsUpdated)
	s.eventPublisher.PublishOrdersConfirmed(ctx, res.ActionId, actorId, date, res.RowsUpdated, res.SubscriptionsUpdated)

	return toTransitionResponse(res), nil
}

func (s *adminOrderService) CancelOrder(ctx context.Context, req dto.CancelOrderRequest, actorId string) (out *dto.TransitionResponse, err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe(ctx, string(entity.ActionCancelOrder), err, time.Since(start))
		logFailure(s.logger, string(entity.ActionCancelOrder), actorId, err, map[string]interface{}{
			"subscription_id": req.SubscriptionId,
			"date":            req.Date,
		})
	}()

	subscriptionId, err := uuid.Parse(req.SubscriptionId)
	if err != nil {
		return nil, apperror.NewValidationError("subscription_id", "must be a valid id")
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}

	reason := strings.TrimSpace(req.Reason)

	res, err := retry(ctx, s.logger, "cancel_order", func() (*orders.TransitionResult, error) {
		return s.manager.CancelOrder(ctx, s.uowFactory.NewUnitOfWork(ctx), subscriptionId, reason, date, actorId)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(subscriptionId)
	s.metrics.RowsChanged(string(entity.ActionCancelOrder), res.RowsUpdated, res.SubscriptionsUpdated)
	s.eventPublisher.PublishOrderCancelled(ctx, res.ActionId, subscriptionId, actorId, date, reason, res.RowsUpdated)

	sub, err := s.uowFactory.NewUnitOfWork(ctx).SubscriptionRepository().FindOne(ctx, specification.ByID{ID: subscriptionId})
	if err == nil && sub != nil {
		notifyCustomer(ctx, s.uowFactory, s.emailService, s.logger, sub.UserId, mailer.CancellationNotice{
			Reason:        reason,
			DeliveryDates: []time.Time{date},
			ByOperator:    true,
		})
	}

	return toTransitionResponse(res), nil
}

func toTransitionResponse(res *orders.TransitionResult) *dto.TransitionResponse {
	return &dto.TransitionResponse{
		ActionId:             res.ActionId,
		ActionType:           string(res.ActionType),
		Description:          res.Description,
		RowsUpdated:          res.RowsUpdated,
		SubscriptionsUpdated: res.SubscriptionsUpdated,
	}
}

// ============================================================================
// Undo
// ============================================================================

func (s *adminOrderService) UndoLastAction(ctx context.Context, actorId string) (*dto.UndoResponse, error) {
	return s.undo(ctx, actorId, nil, func() (*orders.UndoResult, error) {
		return s.manager.UndoLast(ctx, s.uowFactory.NewUnitOfWork(ctx), actorId)
	})
}

func (s *adminOrderService) UndoAction(ctx context.Context, actionId uuid.UUID, actorId string) (*dto.UndoResponse, error) {
	return s.undo(ctx, actorId, map[string]interface{}{"action_id": actionId.String()}, func() (*orders.UndoResult, error) {
		return s.manager.Undo(ctx, s.uowFactory.NewUnitOfWork(ctx), actionId, actorId)
	})
}

func (s *adminOrderService) undo(ctx context.Context, actorId string, details map[string]interface{}, fn func() (*orders.UndoResult, error)) (out *dto.UndoResponse, err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe(ctx, "undo", err, time.Since(start))
		logFailure(s.logger, "undo", actorId, err, details)
	}()

	res, err := retry(ctx, s.logger, "undo", fn)
	if err != nil {
		return nil, err
	}

	s.cache.Flush()
	s.metrics.RowsChanged("undo", res.RowsRestored, res.SubscriptionsRestored)
	s.eventPublisher.PublishActionUndone(ctx, res.ActionId, string(res.ActionType), actorId, res.RowsRestored, res.SubscriptionsRestored)

	return toUndoResponse(res), nil
}

func toUndoResponse(res *orders.UndoResult) *dto.UndoResponse {
	return &dto.UndoResponse{
		ActionId:              res.ActionId,
		ActionType:            string(res.ActionType),
		Description:           "Undid: " + res.Description,
		RowsRestored:          res.RowsRestored,
		SubscriptionsRestored: res.SubscriptionsRestored,
	}
}

// ============================================================================
// Read models
// ============================================================================

func (s *adminOrderService) ListActions(ctx context.Context, actorId string, limit int) ([]*dto.WorkflowActionResponse, error) {
	actions, err := s.manager.ListActions(ctx, s.uowFactory.NewUnitOfWork(ctx), actorId, limit)
	if err != nil {
		return nil, err
	}
	now := s.manager.Now()
	out := make([]*dto.WorkflowActionResponse, 0, len(actions))
	for _, a := range actions {
		out = append(out, toActionResponse(a, now))
	}
	return out, nil
}

func toActionResponse(a *entity.WorkflowAction, now time.Time) *dto.WorkflowActionResponse {
	res := &dto.WorkflowActionResponse{
		Id:                    a.Id,
		ActorId:               a.ActorId,
		ActionType:            string(a.ActionType),
		Description:           a.Description,
		RowsAffected:          a.RowsAffected,
		SubscriptionsAffected: a.SubscriptionsAffected,
		Status:                string(a.Status),
		Undoable:              a.Status == entity.ActionPending && !a.Expired(now),
		ExpiresAt:             a.ExpiresAt,
		UndoneAt:              a.UndoneAt,
		UndoneBy:              a.UndoneBy,
		CreatedAt:             a.CreatedAt,
	}
	if a.TargetDate != nil {
		d := a.TargetDate.Format(dto.DateLayout)
		res.TargetDate = &d
	}
	return res
}

func (s *adminOrderService) ListDeliveries(ctx context.Context, date string) (*dto.DeliveryListResponse, error) {
	day, err := parseDate("date", date)
	if err != nil {
		return nil, err
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)

	rows, err := uow.DeliveryScheduleRepository().FindAll(ctx,
		specification.ByDeliveryDate{Date: day},
		specification.OrderBy{Field: "id"},
	)
	if err != nil {
		return nil, err
	}
	confirmable, err := uow.DeliveryScheduleRepository().Count(ctx, specification.ConfirmableOn{Date: day})
	if err != nil {
		return nil, err
	}

	subs := make(map[uuid.UUID]*entity.Subscription)
	if ids := distinctSubscriptionIds(rows); len(ids) > 0 {
		found, err := uow.SubscriptionRepository().FindAll(ctx, specification.ByIDs{IDs: ids})
		if err != nil {
			return nil, err
		}
		for _, sub := range found {
			subs[sub.Id] = sub
		}
	}

	out := &dto.DeliveryListResponse{
		Date:        day.Format(dto.DateLayout),
		Total:       len(rows),
		Confirmable: int(confirmable),
		Rows:        make([]dto.DeliveryRowResponse, 0, len(rows)),
	}
	for _, r := range rows {
		row := dto.DeliveryRowResponse{
			ScheduleId:     r.Id,
			SubscriptionId: r.SubscriptionId,
			DeliveryDate:   r.DeliveryDate.Format(dto.DateLayout),
			Quantity:       r.Quantity,
			LineStatus:     string(r.LineStatus),
			WorkflowStatus: string(r.WorkflowStatus),
			WorkflowLabel:  orderstatus.WorkflowLabel(r.WorkflowStatus),
			CancelReason:   r.CancelReason,
			CancelledAt:    r.CancelledAt,
			CancelledBy:    r.CancelledBy,
		}
		if sub, ok := subs[r.SubscriptionId]; ok {
			row.SubscriptionStatus = string(sub.LifecycleStatus)
			row.SubscriptionWorkflow = string(sub.WorkflowStatus)
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func distinctSubscriptionIds(rows []*entity.DeliverySchedule) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.SubscriptionId]; ok {
			continue
		}
		seen[r.SubscriptionId] = struct{}{}
		ids = append(ids, r.SubscriptionId)
	}
	return ids
}

// ============================================================================
// Logs
// ============================================================================

func (s *adminOrderService) GetSystemLogs(ctx context.Context, page, limit int, level, module string) ([]*dto.LogListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	entries, err := s.logger.GetLogs(logger.LogFilter{
		Level:  level,
		Module: module,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*dto.LogListResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLogListResponse(e))
	}
	return out, nil
}

func (s *adminOrderService) GetLogDetail(ctx context.Context, logId string) (*dto.LogDetailResponse, error) {
	entry, err := s.logger.GetLogById(logId)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	return &dto.LogDetailResponse{
		LogListResponse: *toLogListResponse(*entry),
		Details:         entry.Details,
	}, nil
}

func toLogListResponse(e logger.LogEntry) *dto.LogListResponse {
	createdAt, _ := time.Parse("2006-01-02T15:04:05.000Z0700", e.Timestamp)
	return &dto.LogListResponse{
		Id:        e.Id,
		Level:     e.Level,
		Module:    e.Module,
		Message:   e.Message,
		CreatedAt: createdAt,
	}
}
