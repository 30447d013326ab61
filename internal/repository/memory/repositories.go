package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"mealbox-be/internal/entity"
	"mealbox-be/internal/repository/specification"
	"mealbox-be/pkg/orderstatus"

	"github.com/google/uuid"
)

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func sameDate(a, b time.Time) bool {
	return a.Format(dateLayout) == b.Format(dateLayout)
}

// ---------------------------------------------------------------------------
// Users

type userRepository struct {
	uow *UnitOfWork
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.uow.exec("UserRepository.Create", func(t *tables) error {
		for _, existing := range t.users {
			if strings.EqualFold(existing.Email, user.Email) {
				return fmt.Errorf("duplicate email %q", user.Email)
			}
		}
		if user.Id == uuid.Nil {
			user.Id = uuid.New()
		}
		now := r.uow.store.now()
		user.CreatedAt, user.UpdatedAt = now, now
		t.users[user.Id] = *user
		return nil
	})
}

func (r *userRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	var found *entity.User
	err := r.uow.exec("UserRepository.FindOne", func(t *tables) error {
		filters, _ := splitSpecs(specs)
		for _, u := range t.users {
			ok, err := matchAll(u, filters, matchUser)
			if err != nil {
				return err
			}
			if ok {
				u := u
				found = &u
				return nil
			}
		}
		return nil
	})
	return found, err
}

func matchUser(u entity.User, spec specification.Specification) (bool, error) {
	switch s := spec.(type) {
	case specification.ByID:
		return u.Id == s.ID, nil
	case specification.ByEmail:
		return strings.EqualFold(u.Email, s.Email), nil
	}
	return false, unsupported(spec)
}

func matchAll[T any](row T, filters []specification.Specification, match func(T, specification.Specification) (bool, error)) (bool, error) {
	for _, f := range filters {
		ok, err := match(row, f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// ---------------------------------------------------------------------------
// Subscriptions

type subscriptionRepository struct {
	uow *UnitOfWork
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *entity.Subscription) error {
	return r.uow.exec("SubscriptionRepository.Create", func(t *tables) error {
		if sub.Id == uuid.Nil {
			sub.Id = uuid.New()
		}
		if _, exists := t.subscriptions[sub.Id]; exists {
			return fmt.Errorf("duplicate subscription %s", sub.Id)
		}
		now := r.uow.store.now()
		sub.CreatedAt, sub.UpdatedAt = now, now
		t.subscriptions[sub.Id] = *sub
		return nil
	})
}

func (r *subscriptionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	rows, err := r.find("SubscriptionRepository.FindOne", specs)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *subscriptionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	return r.find("SubscriptionRepository.FindAll", specs)
}

func (r *subscriptionRepository) find(op string, specs []specification.Specification) ([]*entity.Subscription, error) {
	var out []*entity.Subscription
	err := r.uow.exec(op, func(t *tables) error {
		rows := make([]entity.Subscription, 0, len(t.subscriptions))
		for _, s := range t.subscriptions {
			rows = append(rows, s)
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Id.String() < rows[j].Id.String() })
		filters, q := splitSpecs(specs)
		rows, err := filterRows(rows, filters, matchSubscription)
		if err != nil {
			return err
		}
		rows, err = applyQuery(rows, q, compareSubscription)
		if err != nil {
			return err
		}
		for i := range rows {
			out = append(out, &rows[i])
		}
		return nil
	})
	return out, err
}

func matchSubscription(s entity.Subscription, spec specification.Specification) (bool, error) {
	switch v := spec.(type) {
	case specification.ByID:
		return s.Id == v.ID, nil
	case specification.ByIDs:
		return containsID(v.IDs, s.Id), nil
	case specification.ByWorkflowStatus:
		return s.WorkflowStatus == v.Status, nil
	}
	return false, unsupported(spec)
}

func compareSubscription(a, b entity.Subscription, field string) (int, bool) {
	switch field {
	case "id":
		return strings.Compare(a.Id.String(), b.Id.String()), true
	case "created_at":
		return compareTime(a.CreatedAt, b.CreatedAt), true
	}
	return 0, false
}

func (r *subscriptionRepository) UpdateWorkflowStatus(ctx context.Context, ids []uuid.UUID, from, to orderstatus.Workflow) (int64, error) {
	var n int64
	err := r.uow.exec("SubscriptionRepository.UpdateWorkflowStatus", func(t *tables) error {
		for _, id := range ids {
			s, ok := t.subscriptions[id]
			if !ok || s.WorkflowStatus != from {
				continue
			}
			s.WorkflowStatus = to
			s.UpdatedAt = r.uow.store.now()
			t.subscriptions[id] = s
			n++
		}
		return nil
	})
	return n, err
}

func (r *subscriptionRepository) MarkCancelled(ctx context.Context, id uuid.UUID, stamp entity.CancellationStamp) (int64, error) {
	var n int64
	err := r.uow.exec("SubscriptionRepository.MarkCancelled", func(t *tables) error {
		s, ok := t.subscriptions[id]
		if !ok {
			return nil
		}
		reason, at, by := stamp.Reason, stamp.At, stamp.By
		s.LifecycleStatus = orderstatus.LifecycleCancelled
		s.WorkflowStatus = orderstatus.WorkflowCancelled
		s.CancellationReason, s.CancelledAt, s.CancelledBy = &reason, &at, &by
		s.UpdatedAt = r.uow.store.now()
		t.subscriptions[id] = s
		n = 1
		return nil
	})
	return n, err
}

func (r *subscriptionRepository) RestoreState(ctx context.Context, id uuid.UUID, state entity.SubscriptionState) (int64, error) {
	var n int64
	err := r.uow.exec("SubscriptionRepository.RestoreState", func(t *tables) error {
		s, ok := t.subscriptions[id]
		if !ok {
			return nil
		}
		s.LifecycleStatus = state.LifecycleStatus
		s.WorkflowStatus = state.WorkflowStatus
		s.CancellationReason = state.CancellationReason
		s.CancelledAt = state.CancelledAt
		s.CancelledBy = state.CancelledBy
		s.UpdatedAt = r.uow.store.now()
		t.subscriptions[id] = s
		n = 1
		return nil
	})
	return n, err
}

// ---------------------------------------------------------------------------
// Delivery schedules

type deliveryScheduleRepository struct {
	uow *UnitOfWork
}

func (r *deliveryScheduleRepository) Create(ctx context.Context, d *entity.DeliverySchedule) error {
	return r.uow.exec("DeliveryScheduleRepository.Create", func(t *tables) error {
		if d.Id == uuid.Nil {
			d.Id = uuid.New()
		}
		if _, exists := t.schedules[d.Id]; exists {
			return fmt.Errorf("duplicate delivery %s", d.Id)
		}
		now := r.uow.store.now()
		d.CreatedAt, d.UpdatedAt = now, now
		t.schedules[d.Id] = *d
		return nil
	})
}

func (r *deliveryScheduleRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DeliverySchedule, error) {
	rows, err := r.find("DeliveryScheduleRepository.FindOne", specs)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *deliveryScheduleRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DeliverySchedule, error) {
	return r.find("DeliveryScheduleRepository.FindAll", specs)
}

func (r *deliveryScheduleRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	rows, err := r.find("DeliveryScheduleRepository.Count", specs)
	return int64(len(rows)), err
}

func (r *deliveryScheduleRepository) find(op string, specs []specification.Specification) ([]*entity.DeliverySchedule, error) {
	var out []*entity.DeliverySchedule
	err := r.uow.exec(op, func(t *tables) error {
		rows := make([]entity.DeliverySchedule, 0, len(t.schedules))
		for _, d := range t.schedules {
			rows = append(rows, d)
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Id.String() < rows[j].Id.String() })
		filters, q := splitSpecs(specs)
		match := func(d entity.DeliverySchedule, spec specification.Specification) (bool, error) {
			return matchSchedule(t, d, spec)
		}
		rows, err := filterRows(rows, filters, match)
		if err != nil {
			return err
		}
		rows, err = applyQuery(rows, q, compareSchedule)
		if err != nil {
			return err
		}
		for i := range rows {
			out = append(out, &rows[i])
		}
		return nil
	})
	return out, err
}

func matchSchedule(t *tables, d entity.DeliverySchedule, spec specification.Specification) (bool, error) {
	switch v := spec.(type) {
	case specification.ByID:
		return d.Id == v.ID, nil
	case specification.ByIDs:
		return containsID(v.IDs, d.Id), nil
	case specification.BySubscriptionID:
		return d.SubscriptionId == v.SubscriptionID, nil
	case specification.ByDeliveryDate:
		return sameDate(d.DeliveryDate, v.Date), nil
	case specification.DeliveryOnOrAfter:
		return d.DeliveryDate.Format(dateLayout) >= v.Date.Format(dateLayout), nil
	case specification.ByLineStatus:
		return d.LineStatus == v.Status, nil
	case specification.ByWorkflowStatus:
		return d.WorkflowStatus == v.Status, nil
	case specification.WorkflowNotTerminal:
		return !d.WorkflowStatus.IsTerminal(), nil
	case specification.ConfirmableOn:
		sub, ok := t.subscriptions[d.SubscriptionId]
		if !ok {
			return false, nil
		}
		return sameDate(d.DeliveryDate, v.Date) &&
			d.LineStatus == orderstatus.LineScheduled &&
			d.WorkflowStatus == orderstatus.WorkflowOrderReceived &&
			sub.LifecycleStatus == orderstatus.LifecycleActive &&
			sub.WorkflowStatus == orderstatus.WorkflowOrderReceived, nil
	}
	return false, unsupported(spec)
}

func compareSchedule(a, b entity.DeliverySchedule, field string) (int, bool) {
	switch field {
	case "id":
		return strings.Compare(a.Id.String(), b.Id.String()), true
	case "delivery_date":
		return strings.Compare(a.DeliveryDate.Format(dateLayout), b.DeliveryDate.Format(dateLayout)), true
	case "created_at":
		return compareTime(a.CreatedAt, b.CreatedAt), true
	}
	return 0, false
}

func (r *deliveryScheduleRepository) UpdateWorkflowStatus(ctx context.Context, ids []uuid.UUID, from, to orderstatus.Workflow) (int64, error) {
	var n int64
	err := r.uow.exec("DeliveryScheduleRepository.UpdateWorkflowStatus", func(t *tables) error {
		for _, id := range ids {
			d, ok := t.schedules[id]
			if !ok || d.WorkflowStatus != from {
				continue
			}
			d.WorkflowStatus = to
			d.UpdatedAt = r.uow.store.now()
			t.schedules[id] = d
			n++
		}
		return nil
	})
	return n, err
}

func (r *deliveryScheduleRepository) MarkCancelled(ctx context.Context, ids []uuid.UUID, stamp entity.CancellationStamp) (int64, error) {
	var n int64
	err := r.uow.exec("DeliveryScheduleRepository.MarkCancelled", func(t *tables) error {
		for _, id := range ids {
			d, ok := t.schedules[id]
			if !ok || d.WorkflowStatus.IsTerminal() {
				continue
			}
			reason, at, by := stamp.Reason, stamp.At, stamp.By
			d.WorkflowStatus = orderstatus.WorkflowCancelled
			d.CancelReason, d.CancelledAt, d.CancelledBy = &reason, &at, &by
			d.UpdatedAt = r.uow.store.now()
			t.schedules[id] = d
			n++
		}
		return nil
	})
	return n, err
}

func (r *deliveryScheduleRepository) CancelLines(ctx context.Context, ids []uuid.UUID, stamp entity.CancellationStamp) (int64, error) {
	var n int64
	err := r.uow.exec("DeliveryScheduleRepository.CancelLines", func(t *tables) error {
		for _, id := range ids {
			d, ok := t.schedules[id]
			if !ok || d.LineStatus != orderstatus.LineScheduled {
				continue
			}
			reason, at, by := stamp.Reason, stamp.At, stamp.By
			d.LineStatus = orderstatus.LineCancelled
			d.WorkflowStatus = orderstatus.WorkflowCancelled
			d.CancelReason, d.CancelledAt, d.CancelledBy = &reason, &at, &by
			d.UpdatedAt = r.uow.store.now()
			t.schedules[id] = d
			n++
		}
		return nil
	})
	return n, err
}

func (r *deliveryScheduleRepository) RestoreState(ctx context.Context, id uuid.UUID, state entity.ScheduleState) (int64, error) {
	var n int64
	err := r.uow.exec("DeliveryScheduleRepository.RestoreState", func(t *tables) error {
		d, ok := t.schedules[id]
		if !ok {
			return nil
		}
		d.WorkflowStatus = state.WorkflowStatus
		d.CancelReason = state.CancelReason
		d.CancelledAt = state.CancelledAt
		d.CancelledBy = state.CancelledBy
		d.UpdatedAt = r.uow.store.now()
		t.schedules[id] = d
		n = 1
		return nil
	})
	return n, err
}

// ---------------------------------------------------------------------------
// Orders

type orderRepository struct {
	uow *UnitOfWork
}

func (r *orderRepository) Create(ctx context.Context, o *entity.Order) error {
	return r.uow.exec("OrderRepository.Create", func(t *tables) error {
		if o.Id == uuid.Nil {
			o.Id = uuid.New()
		}
		now := r.uow.store.now()
		o.CreatedAt, o.UpdatedAt = now, now
		t.orders[o.Id] = *o
		return nil
	})
}

func (r *orderRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Order, error) {
	var out *entity.Order
	err := r.uow.exec("OrderRepository.FindOne", func(t *tables) error {
		rows := make([]entity.Order, 0, len(t.orders))
		for _, o := range t.orders {
			rows = append(rows, o)
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Id.String() < rows[j].Id.String() })
		filters, q := splitSpecs(specs)
		rows, err := filterRows(rows, filters, matchOrder)
		if err != nil {
			return err
		}
		rows, err = applyQuery(rows, q, compareOrder)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			out = &rows[0]
		}
		return nil
	})
	return out, err
}

func matchOrder(o entity.Order, spec specification.Specification) (bool, error) {
	switch v := spec.(type) {
	case specification.ByID:
		return o.Id == v.ID, nil
	case specification.BySubscriptionID:
		return o.SubscriptionId == v.SubscriptionID, nil
	case specification.DeliveryOnOrAfter:
		return o.DeliveryDate.Format(dateLayout) >= v.Date.Format(dateLayout), nil
	case specification.ByDeliveryDate:
		return sameDate(o.DeliveryDate, v.Date), nil
	}
	return false, unsupported(spec)
}

func compareOrder(a, b entity.Order, field string) (int, bool) {
	switch field {
	case "delivery_date":
		return strings.Compare(a.DeliveryDate.Format(dateLayout), b.DeliveryDate.Format(dateLayout)), true
	case "created_at":
		return compareTime(a.CreatedAt, b.CreatedAt), true
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Workflow actions

type workflowActionRepository struct {
	uow *UnitOfWork
}

func (r *workflowActionRepository) Create(ctx context.Context, a *entity.WorkflowAction) error {
	return r.uow.exec("WorkflowActionRepository.Create", func(t *tables) error {
		if a.Id == uuid.Nil {
			a.Id = uuid.New()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = r.uow.store.now()
		}
		row := *a
		row.Snapshot = append([]entity.SnapshotEntry(nil), a.Snapshot...)
		t.actions[a.Id] = row
		return nil
	})
}

func (r *workflowActionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WorkflowAction, error) {
	rows, err := r.find("WorkflowActionRepository.FindOne", specs)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *workflowActionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorkflowAction, error) {
	return r.find("WorkflowActionRepository.FindAll", specs)
}

func (r *workflowActionRepository) find(op string, specs []specification.Specification) ([]*entity.WorkflowAction, error) {
	var out []*entity.WorkflowAction
	err := r.uow.exec(op, func(t *tables) error {
		rows := make([]entity.WorkflowAction, 0, len(t.actions))
		for _, a := range t.actions {
			a.Snapshot = append([]entity.SnapshotEntry(nil), a.Snapshot...)
			rows = append(rows, a)
		}
		sort.Slice(rows, func(i, j int) bool {
			if c := compareTime(rows[i].CreatedAt, rows[j].CreatedAt); c != 0 {
				return c < 0
			}
			return rows[i].Id.String() < rows[j].Id.String()
		})
		filters, q := splitSpecs(specs)
		rows, err := filterRows(rows, filters, matchAction)
		if err != nil {
			return err
		}
		rows, err = applyQuery(rows, q, compareAction)
		if err != nil {
			return err
		}
		for i := range rows {
			out = append(out, &rows[i])
		}
		return nil
	})
	return out, err
}

func matchAction(a entity.WorkflowAction, spec specification.Specification) (bool, error) {
	switch v := spec.(type) {
	case specification.ByID:
		return a.Id == v.ID, nil
	case specification.ByActorID:
		return a.ActorId == v.ActorID, nil
	case specification.ByActionStatus:
		return a.Status == v.Status, nil
	}
	return false, unsupported(spec)
}

func compareAction(a, b entity.WorkflowAction, field string) (int, bool) {
	switch field {
	case "created_at":
		return compareTime(a.CreatedAt, b.CreatedAt), true
	}
	return 0, false
}

func (r *workflowActionRepository) SupersedePending(ctx context.Context, actorId string) (int64, error) {
	var n int64
	err := r.uow.exec("WorkflowActionRepository.SupersedePending", func(t *tables) error {
		for id, a := range t.actions {
			if a.ActorId != actorId || a.Status != entity.ActionPending {
				continue
			}
			a.Status = entity.ActionSuperseded
			t.actions[id] = a
			n++
		}
		return nil
	})
	return n, err
}

func (r *workflowActionRepository) MarkUndone(ctx context.Context, id uuid.UUID, undoneBy string, at time.Time) (int64, error) {
	var n int64
	err := r.uow.exec("WorkflowActionRepository.MarkUndone", func(t *tables) error {
		a, ok := t.actions[id]
		if !ok || a.Status != entity.ActionPending {
			return nil
		}
		by := undoneBy
		a.Status = entity.ActionUndone
		a.UndoneAt, a.UndoneBy = &at, &by
		t.actions[id] = a
		n = 1
		return nil
	})
	return n, err
}
