package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mealbox-be/internal/entity"
	"mealbox-be/internal/pkg/apperror"
	"mealbox-be/internal/pkg/logger"
	"mealbox-be/internal/repository/specification"
	"mealbox-be/internal/repository/unitofwork"
	"mealbox-be/pkg/orderstatus"

	"github.com/google/uuid"
)

const (
	logModule = "ORDER_WORKFLOW"

	defaultActionLimit = 20
	maxActionLimit     = 100

	descriptionDateLayout = "Monday, 2 Jan 2006"
)

// TransitionResult contains the outcome of a committed transition
type TransitionResult struct {
	ActionId             uuid.UUID
	ActionType           entity.ActionType
	Description          string
	RowsUpdated          int
	SubscriptionsUpdated int
	SubscriptionIds      []uuid.UUID
	ScheduleIds          []uuid.UUID
}

// UndoResult contains the outcome of a committed undo
type UndoResult struct {
	ActionId              uuid.UUID
	ActionType            entity.ActionType
	Description           string
	RowsRestored          int
	SubscriptionsRestored int
	SubscriptionIds       []uuid.UUID
}

// Manager runs workflow transitions and their undo. Every call is one
// transaction: the rows are locked, the snapshot is captured, the new state
// is written and the action log entry is inserted before commit. On any
// failure the whole transaction is rolled back, so an actor's pending action
// survives a failed attempt.
type Manager struct {
	logger     logger.ILogger
	undoWindow time.Duration
	now        func() time.Time
}

// NewManager creates a manager. An undoWindow of zero keeps actions undoable
// until superseded.
func NewManager(logger logger.ILogger, undoWindow time.Duration) *Manager {
	return &Manager{
		logger:     logger,
		undoWindow: undoWindow,
		now:        time.Now,
	}
}

// WithClock replaces the clock. Expiry is stamped and checked against it.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Now is the manager's clock, so read models judge expiry the same way undo does.
func (m *Manager) Now() time.Time {
	return m.now()
}

func validateActor(actorId string) error {
	if strings.TrimSpace(actorId) == "" {
		return apperror.NewValidationError("actor_id", "actor is required")
	}
	return nil
}

func validateDate(date time.Time) error {
	if date.IsZero() {
		return apperror.NewValidationError("date", "a valid delivery date is required")
	}
	return nil
}

// calendarDay drops the clock so target dates compare by day only.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (m *Manager) expiry(at time.Time) *time.Time {
	if m.undoWindow <= 0 {
		return nil
	}
	exp := at.Add(m.undoWindow)
	return &exp
}

// ConfirmAll moves every confirmable delivery on date from "order received"
// to "in the kitchen", in both the schedule rows and their subscriptions.
func (m *Manager) ConfirmAll(ctx context.Context, uow unitofwork.UnitOfWork, date time.Time, actorId string) (*TransitionResult, error) {
	if err := validateActor(actorId); err != nil {
		return nil, err
	}
	if err := validateDate(date); err != nil {
		return nil, err
	}
	day := calendarDay(date)

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Wrap("confirm_all: begin", err)
	}
	defer uow.Rollback()

	// 1. Lock the eligible rows
	rows, err := uow.DeliveryScheduleRepository().FindAll(ctx,
		specification.ConfirmableOn{Date: day},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, apperror.Wrap("confirm_all: lock schedule rows", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: nothing to confirm on %s", apperror.ErrNoMatchingRows, day.Format("2006-01-02"))
	}

	// 2. Lock their subscriptions
	subIds := distinctSubscriptions(rows)
	subs, err := m.lockSubscriptions(ctx, uow, subIds)
	if err != nil {
		return nil, apperror.Wrap("confirm_all: lock subscriptions", err)
	}

	// 3. Capture prior state
	snapshot := make([]entity.SnapshotEntry, 0, len(rows))
	rowIds := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		sub, ok := subs[row.SubscriptionId]
		if !ok {
			return nil, apperror.Wrap("confirm_all: lock subscriptions", fmt.Errorf("subscription %s vanished", row.SubscriptionId))
		}
		snapshot = append(snapshot, newSnapshotEntry(row, sub, orderstatus.WorkflowInKitchen, orderstatus.WorkflowInKitchen))
		rowIds = append(rowIds, row.Id)
	}

	// 4. Retire the previous undo and apply
	if _, err := uow.WorkflowActionRepository().SupersedePending(ctx, actorId); err != nil {
		return nil, apperror.Wrap("confirm_all: supersede", err)
	}
	rowsUpdated, err := uow.DeliveryScheduleRepository().UpdateWorkflowStatus(ctx, rowIds, orderstatus.WorkflowOrderReceived, orderstatus.WorkflowInKitchen)
	if err != nil {
		return nil, apperror.Wrap("confirm_all: update schedule rows", err)
	}
	subsUpdated, err := uow.SubscriptionRepository().UpdateWorkflowStatus(ctx, subIds, orderstatus.WorkflowOrderReceived, orderstatus.WorkflowInKitchen)
	if err != nil {
		return nil, apperror.Wrap("confirm_all: update subscriptions", err)
	}

	// 5. Record the action
	now := m.now()
	action := &entity.WorkflowAction{
		ActorId:               actorId,
		ActionType:            entity.ActionConfirmAll,
		TargetDate:            &day,
		Description:           fmt.Sprintf("Confirmed %d orders for %s", rowsUpdated, day.Format(descriptionDateLayout)),
		Snapshot:              snapshot,
		RowsAffected:          int(rowsUpdated),
		SubscriptionsAffected: int(subsUpdated),
		Status:                entity.ActionPending,
		ExpiresAt:             m.expiry(now),
		CreatedAt:             now,
	}
	if err := uow.WorkflowActionRepository().Create(ctx, action); err != nil {
		return nil, apperror.Wrap("confirm_all: record action", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Wrap("confirm_all: commit", err)
	}

	m.logger.Info(logModule, "Confirmed orders", map[string]interface{}{
		"actionId":             action.Id.String(),
		"actorId":              actorId,
		"date":                 day.Format("2006-01-02"),
		"rowsUpdated":          rowsUpdated,
		"subscriptionsUpdated": subsUpdated,
	})

	return &TransitionResult{
		ActionId:             action.Id,
		ActionType:           action.ActionType,
		Description:          action.Description,
		RowsUpdated:          int(rowsUpdated),
		SubscriptionsUpdated: int(subsUpdated),
		SubscriptionIds:      subIds,
		ScheduleIds:          rowIds,
	}, nil
}

// CancelOrder cancels a subscription's open deliveries on date together with
// the subscription itself, stamping reason, time and actor on both.
func (m *Manager) CancelOrder(ctx context.Context, uow unitofwork.UnitOfWork, subscriptionId uuid.UUID, reason string, date time.Time, actorId string) (*TransitionResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.NewValidationError("reason", "a cancellation reason is required")
	}
	if subscriptionId == uuid.Nil {
		return nil, apperror.NewValidationError("subscription_id", "subscription is required")
	}
	if err := validateDate(date); err != nil {
		return nil, err
	}
	if err := validateActor(actorId); err != nil {
		return nil, err
	}
	day := calendarDay(date)

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Wrap("cancel_order: begin", err)
	}
	defer uow.Rollback()

	// 1. Lock the subscription
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: subscriptionId}, specification.ForUpdate{})
	if err != nil {
		return nil, apperror.Wrap("cancel_order: lock subscription", err)
	}
	if sub == nil {
		return nil, apperror.NewValidationError("subscription_id", "subscription does not exist")
	}

	// 2. Lock the open rows for that day
	rows, err := uow.DeliveryScheduleRepository().FindAll(ctx,
		specification.BySubscriptionID{SubscriptionID: subscriptionId},
		specification.ByDeliveryDate{Date: day},
		specification.WorkflowNotTerminal{},
		specification.OrderBy{Field: "id"},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, apperror.Wrap("cancel_order: lock schedule rows", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no open delivery for subscription %s on %s", apperror.ErrNoMatchingRows, subscriptionId, day.Format("2006-01-02"))
	}

	// 3. Capture prior state
	snapshot := make([]entity.SnapshotEntry, 0, len(rows))
	rowIds := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		snapshot = append(snapshot, newSnapshotEntry(row, sub, orderstatus.WorkflowCancelled, orderstatus.WorkflowCancelled))
		rowIds = append(rowIds, row.Id)
	}

	// 4. Retire the previous undo and apply
	now := m.now()
	stamp := entity.CancellationStamp{Reason: reason, At: now, By: actorId}

	if _, err := uow.WorkflowActionRepository().SupersedePending(ctx, actorId); err != nil {
		return nil, apperror.Wrap("cancel_order: supersede", err)
	}
	rowsUpdated, err := uow.DeliveryScheduleRepository().MarkCancelled(ctx, rowIds, stamp)
	if err != nil {
		return nil, apperror.Wrap("cancel_order: update schedule rows", err)
	}
	subsUpdated, err := uow.SubscriptionRepository().MarkCancelled(ctx, subscriptionId, stamp)
	if err != nil {
		return nil, apperror.Wrap("cancel_order: update subscription", err)
	}

	// 5. Record the action
	action := &entity.WorkflowAction{
		ActorId:               actorId,
		ActionType:            entity.ActionCancelOrder,
		TargetDate:            &day,
		TargetSubscriptionId:  &subscriptionId,
		Description:           fmt.Sprintf("Cancelled order %s for %s", shortId(subscriptionId), day.Format(descriptionDateLayout)),
		Snapshot:              snapshot,
		RowsAffected:          int(rowsUpdated),
		SubscriptionsAffected: int(subsUpdated),
		Status:                entity.ActionPending,
		ExpiresAt:             m.expiry(now),
		CreatedAt:             now,
	}
	if err := uow.WorkflowActionRepository().Create(ctx, action); err != nil {
		return nil, apperror.Wrap("cancel_order: record action", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Wrap("cancel_order: commit", err)
	}

	m.logger.Info(logModule, "Cancelled order", map[string]interface{}{
		"actionId":       action.Id.String(),
		"actorId":        actorId,
		"subscriptionId": subscriptionId.String(),
		"date":           day.Format("2006-01-02"),
		"rowsUpdated":    rowsUpdated,
		"reason":         reason,
	})

	return &TransitionResult{
		ActionId:             action.Id,
		ActionType:           action.ActionType,
		Description:          action.Description,
		RowsUpdated:          int(rowsUpdated),
		SubscriptionsUpdated: int(subsUpdated),
		SubscriptionIds:      []uuid.UUID{subscriptionId},
		ScheduleIds:          rowIds,
	}, nil
}

// AdvanceDelivery is the single-row step a rider or the kitchen takes. The
// subscription follows the row only when the same step is legal for it.
func (m *Manager) AdvanceDelivery(ctx context.Context, uow unitofwork.UnitOfWork, scheduleId uuid.UUID, to orderstatus.Workflow, actorId string) (*TransitionResult, error) {
	if scheduleId == uuid.Nil {
		return nil, apperror.NewValidationError("schedule_id", "delivery is required")
	}
	if !to.Valid() || to == orderstatus.WorkflowCancelled || to == orderstatus.WorkflowOrderReceived {
		return nil, apperror.NewValidationError("status", fmt.Sprintf("%q is not a status a delivery can advance to", to))
	}
	if err := validateActor(actorId); err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Wrap("advance_delivery: begin", err)
	}
	defer uow.Rollback()

	row, err := uow.DeliveryScheduleRepository().FindOne(ctx, specification.ByID{ID: scheduleId}, specification.ForUpdate{})
	if err != nil {
		return nil, apperror.Wrap("advance_delivery: lock schedule row", err)
	}
	if row == nil {
		return nil, fmt.Errorf("delivery %s: %w", scheduleId, apperror.ErrNotFound)
	}
	if row.LineStatus != orderstatus.LineScheduled || !CanTransition(row.WorkflowStatus, to) {
		return nil, fmt.Errorf("%w: %s to %s", apperror.ErrInvalidTransition, row.WorkflowStatus, to)
	}

	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: row.SubscriptionId}, specification.ForUpdate{})
	if err != nil {
		return nil, apperror.Wrap("advance_delivery: lock subscription", err)
	}
	if sub == nil {
		return nil, fmt.Errorf("subscription %s: %w", row.SubscriptionId, apperror.ErrNotFound)
	}

	var appliedSub orderstatus.Workflow
	if !sub.IsCancelled() && CanTransition(sub.WorkflowStatus, to) {
		appliedSub = to
	}
	entry := newSnapshotEntry(row, sub, to, appliedSub)

	if _, err := uow.WorkflowActionRepository().SupersedePending(ctx, actorId); err != nil {
		return nil, apperror.Wrap("advance_delivery: supersede", err)
	}
	rowsUpdated, err := uow.DeliveryScheduleRepository().UpdateWorkflowStatus(ctx, []uuid.UUID{row.Id}, row.WorkflowStatus, to)
	if err != nil {
		return nil, apperror.Wrap("advance_delivery: update schedule row", err)
	}
	var subsUpdated int64
	if appliedSub != "" {
		subsUpdated, err = uow.SubscriptionRepository().UpdateWorkflowStatus(ctx, []uuid.UUID{sub.Id}, sub.WorkflowStatus, to)
		if err != nil {
			return nil, apperror.Wrap("advance_delivery: update subscription", err)
		}
	}

	now := m.now()
	day := calendarDay(row.DeliveryDate)
	action := &entity.WorkflowAction{
		ActorId:               actorId,
		ActionType:            entity.ActionAdvanceDelivery,
		TargetDate:            &day,
		TargetSubscriptionId:  &row.SubscriptionId,
		TargetScheduleId:      &row.Id,
		Description:           fmt.Sprintf("Marked delivery %s as %s", shortId(row.Id), orderstatus.WorkflowLabel(to)),
		Snapshot:              []entity.SnapshotEntry{entry},
		RowsAffected:          int(rowsUpdated),
		SubscriptionsAffected: int(subsUpdated),
		Status:                entity.ActionPending,
		ExpiresAt:             m.expiry(now),
		CreatedAt:             now,
	}
	if err := uow.WorkflowActionRepository().Create(ctx, action); err != nil {
		return nil, apperror.Wrap("advance_delivery: record action", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Wrap("advance_delivery: commit", err)
	}

	m.logger.Info(logModule, "Advanced delivery", map[string]interface{}{
		"actionId":   action.Id.String(),
		"actorId":    actorId,
		"scheduleId": row.Id.String(),
		"from":       string(row.WorkflowStatus),
		"to":         string(to),
		"mirrored":   appliedSub != "",
	})

	return &TransitionResult{
		ActionId:             action.Id,
		ActionType:           action.ActionType,
		Description:          action.Description,
		RowsUpdated:          int(rowsUpdated),
		SubscriptionsUpdated: int(subsUpdated),
		SubscriptionIds:      []uuid.UUID{row.SubscriptionId},
		ScheduleIds:          []uuid.UUID{row.Id},
	}, nil
}

// Undo reverses one specific pending action. Any operator may undo any
// action; the undoing actor is recorded.
func (m *Manager) Undo(ctx context.Context, uow unitofwork.UnitOfWork, actionId uuid.UUID, actorId string) (*UndoResult, error) {
	if actionId == uuid.Nil {
		return nil, apperror.NewValidationError("action_id", "action is required")
	}
	if err := validateActor(actorId); err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Wrap("undo: begin", err)
	}
	defer uow.Rollback()

	action, err := uow.WorkflowActionRepository().FindOne(ctx, specification.ByID{ID: actionId}, specification.ForUpdate{})
	if err != nil {
		return nil, apperror.Wrap("undo: lock action", err)
	}
	return m.undo(ctx, uow, action, actorId)
}

// UndoLast reverses the actor's own most recent pending action.
func (m *Manager) UndoLast(ctx context.Context, uow unitofwork.UnitOfWork, actorId string) (*UndoResult, error) {
	if err := validateActor(actorId); err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Wrap("undo: begin", err)
	}
	defer uow.Rollback()

	action, err := uow.WorkflowActionRepository().FindOne(ctx,
		specification.ByActorID{ActorID: actorId},
		specification.ByActionStatus{Status: entity.ActionPending},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, apperror.Wrap("undo: lock action", err)
	}
	return m.undo(ctx, uow, action, actorId)
}

// undo runs inside the caller's open transaction and commits it.
func (m *Manager) undo(ctx context.Context, uow unitofwork.UnitOfWork, action *entity.WorkflowAction, actorId string) (*UndoResult, error) {
	now := m.now()
	if action == nil || action.Status != entity.ActionPending {
		return nil, apperror.ErrNoPendingUndo
	}
	if action.Expired(now) {
		return nil, fmt.Errorf("%w: the undo window closed at %s", apperror.ErrNoPendingUndo, action.ExpiresAt.Format(time.RFC3339))
	}
	if len(action.Snapshot) == 0 {
		return nil, fmt.Errorf("%w: action %s has no recorded rows", apperror.ErrNoPendingUndo, action.Id)
	}

	// 1. Lock everything the action touched
	scheduleIds := make([]uuid.UUID, 0, len(action.Snapshot))
	var subIds []uuid.UUID
	firstEntry := map[uuid.UUID]entity.SnapshotEntry{}
	for _, e := range action.Snapshot {
		scheduleIds = append(scheduleIds, e.ScheduleId)
		if e.AppliedSubscriptionStatus == "" {
			continue
		}
		if _, seen := firstEntry[e.SubscriptionId]; !seen {
			firstEntry[e.SubscriptionId] = e
			subIds = append(subIds, e.SubscriptionId)
		}
	}

	rows, err := uow.DeliveryScheduleRepository().FindAll(ctx,
		specification.ByIDs{IDs: scheduleIds},
		specification.OrderBy{Field: "id"},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, apperror.Wrap("undo: lock schedule rows", err)
	}
	current := make(map[uuid.UUID]orderstatus.Workflow, len(rows))
	for _, row := range rows {
		current[row.Id] = row.WorkflowStatus
	}
	subs, err := m.lockSubscriptions(ctx, uow, subIds)
	if err != nil {
		return nil, apperror.Wrap("undo: lock subscriptions", err)
	}

	// 2. Refuse to overwrite anything that moved on since
	for _, e := range action.Snapshot {
		if status, ok := current[e.ScheduleId]; !ok || status != e.AppliedLineStatus {
			return nil, fmt.Errorf("%w: delivery %s is now %q", apperror.ErrUndoConflict, e.ScheduleId, status)
		}
	}
	for _, id := range subIds {
		sub, ok := subs[id]
		if !ok || sub.WorkflowStatus != firstEntry[id].AppliedSubscriptionStatus {
			return nil, fmt.Errorf("%w: subscription %s changed", apperror.ErrUndoConflict, id)
		}
	}

	// 3. Restore
	var rowsRestored, subsRestored int64
	switch action.ActionType {
	case entity.ActionCancelOrder:
		for _, e := range action.Snapshot {
			n, err := uow.DeliveryScheduleRepository().RestoreState(ctx, e.ScheduleId, e.PriorScheduleState())
			if err != nil {
				return nil, apperror.Wrap("undo: restore schedule row", err)
			}
			rowsRestored += n
		}
		for _, id := range subIds {
			n, err := uow.SubscriptionRepository().RestoreState(ctx, id, firstEntry[id].PriorSubscriptionState())
			if err != nil {
				return nil, apperror.Wrap("undo: restore subscription", err)
			}
			subsRestored += n
		}
	default:
		// Only the workflow status was written, so only it is put back.
		byPrior := map[orderstatus.Workflow][]uuid.UUID{}
		var priors []orderstatus.Workflow
		for _, e := range action.Snapshot {
			if _, ok := byPrior[e.PriorLineWorkflowStatus]; !ok {
				priors = append(priors, e.PriorLineWorkflowStatus)
			}
			byPrior[e.PriorLineWorkflowStatus] = append(byPrior[e.PriorLineWorkflowStatus], e.ScheduleId)
		}
		applied := action.Snapshot[0].AppliedLineStatus
		for _, prior := range priors {
			n, err := uow.DeliveryScheduleRepository().UpdateWorkflowStatus(ctx, byPrior[prior], applied, prior)
			if err != nil {
				return nil, apperror.Wrap("undo: restore schedule rows", err)
			}
			rowsRestored += n
		}
		for _, id := range subIds {
			e := firstEntry[id]
			n, err := uow.SubscriptionRepository().UpdateWorkflowStatus(ctx, []uuid.UUID{id}, e.AppliedSubscriptionStatus, e.PriorSubscriptionWorkflowStatus)
			if err != nil {
				return nil, apperror.Wrap("undo: restore subscriptions", err)
			}
			subsRestored += n
		}
	}

	// 4. Consume the action
	n, err := uow.WorkflowActionRepository().MarkUndone(ctx, action.Id, actorId, now)
	if err != nil {
		return nil, apperror.Wrap("undo: mark action", err)
	}
	if n != 1 {
		return nil, apperror.ErrNoPendingUndo
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Wrap("undo: commit", err)
	}

	m.logger.Info(logModule, "Undid action", map[string]interface{}{
		"actionId":              action.Id.String(),
		"actionType":            string(action.ActionType),
		"actorId":               actorId,
		"originalActorId":       action.ActorId,
		"rowsRestored":          rowsRestored,
		"subscriptionsRestored": subsRestored,
	})

	affected := subIds
	if len(affected) == 0 && action.TargetSubscriptionId != nil {
		affected = []uuid.UUID{*action.TargetSubscriptionId}
	}
	return &UndoResult{
		ActionId:              action.Id,
		ActionType:            action.ActionType,
		Description:           action.Description,
		RowsRestored:          int(rowsRestored),
		SubscriptionsRestored: int(subsRestored),
		SubscriptionIds:       affected,
	}, nil
}

// ListActions returns recent log entries, newest first. An empty actorId
// lists every actor.
func (m *Manager) ListActions(ctx context.Context, uow unitofwork.UnitOfWork, actorId string, limit int) ([]*entity.WorkflowAction, error) {
	if limit < 1 {
		limit = defaultActionLimit
	}
	if limit > maxActionLimit {
		limit = maxActionLimit
	}
	var specs []specification.Specification
	if actorId != "" {
		specs = append(specs, specification.ByActorID{ActorID: actorId})
	}
	specs = append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
	return uow.WorkflowActionRepository().FindAll(ctx, specs...)
}

func (m *Manager) lockSubscriptions(ctx context.Context, uow unitofwork.UnitOfWork, ids []uuid.UUID) (map[uuid.UUID]*entity.Subscription, error) {
	out := make(map[uuid.UUID]*entity.Subscription, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	subs, err := uow.SubscriptionRepository().FindAll(ctx,
		specification.ByIDs{IDs: ids},
		specification.OrderBy{Field: "id"},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, err
	}
	for _, s := range subs {
		out[s.Id] = s
	}
	return out, nil
}

func distinctSubscriptions(rows []*entity.DeliverySchedule) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(rows))
	var ids []uuid.UUID
	for _, row := range rows {
		if seen[row.SubscriptionId] {
			continue
		}
		seen[row.SubscriptionId] = true
		ids = append(ids, row.SubscriptionId)
	}
	return ids
}

func newSnapshotEntry(row *entity.DeliverySchedule, sub *entity.Subscription, appliedLine, appliedSub orderstatus.Workflow) entity.SnapshotEntry {
	return entity.SnapshotEntry{
		ScheduleId:                      row.Id,
		PriorLineWorkflowStatus:         row.WorkflowStatus,
		PriorLineCancelReason:           row.CancelReason,
		PriorLineCancelledAt:            row.CancelledAt,
		PriorLineCancelledBy:            row.CancelledBy,
		SubscriptionId:                  sub.Id,
		PriorSubscriptionWorkflowStatus: sub.WorkflowStatus,
		PriorLifecycleStatus:            sub.LifecycleStatus,
		PriorCancellationReason:         sub.CancellationReason,
		PriorCancelledAt:                sub.CancelledAt,
		PriorCancelledBy:                sub.CancelledBy,
		AppliedLineStatus:               appliedLine,
		AppliedSubscriptionStatus:       appliedSub,
	}
}

func shortId(id uuid.UUID) string {
	return strings.ToUpper(id.String()[:8])
}
