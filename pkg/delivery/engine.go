// Package delivery derives the customer-facing order status from the clock.
//
// Everything here is pure: callers pass "now" explicitly and nothing is read
// from or written to storage. Time windows come from a declarative Schedule so
// adding a delivery day never touches the derivation rules.
package delivery

import (
	"fmt"
	"time"

	"mealbox-be/pkg/orderstatus"
)

// Source records which rule produced a derived status.
type Source string

const (
	SourceSubscription     Source = "subscription"
	SourceNoFutureDelivery Source = "no_future_delivery"
	SourceOrder            Source = "order"
	SourceUnconfiguredDay  Source = "unconfigured_day"
	SourceTimeWindow       Source = "time_window"
)

// OrderSnapshot is the part of a legacy order row the engine looks at.
type OrderSnapshot struct {
	Status       string
	DeliveryDate time.Time
}

type Input struct {
	// SubscriptionCancelled overrides every other rule.
	SubscriptionCancelled bool
	// NextDelivery is the earliest schedule row dated today or later, nil
	// when none is left.
	NextDelivery *time.Time
	// Order is the concrete order row for the subscription, if any.
	Order *OrderSnapshot
	Now   time.Time
}

type Result struct {
	Status     orderstatus.Derived
	IsTerminal bool
	Source     Source
	Windows    *Windows
}

type Engine struct {
	schedule *Schedule
}

func NewEngine(schedule *Schedule) *Engine {
	return &Engine{schedule: schedule}
}

func (e *Engine) Schedule() *Schedule {
	return e.schedule
}

// Today is the calendar date of now in the operational timezone.
func (e *Engine) Today(now time.Time) time.Time {
	return CalendarDate(now.In(e.schedule.Location()), e.schedule.Location())
}

func (e *Engine) Derive(in Input) Result {
	if in.SubscriptionCancelled {
		return result(orderstatus.DerivedCancelled, SourceSubscription, nil)
	}
	if in.NextDelivery == nil {
		return result(orderstatus.DerivedCompleted, SourceNoFutureDelivery, nil)
	}

	now := in.Now.In(e.schedule.Location())
	today := e.Today(now)

	if in.Order != nil {
		orderDay := CalendarDate(in.Order.DeliveryDate, e.schedule.Location())
		if !orderDay.Before(today) {
			if status, ok := orderstatus.FromOrderStatus(in.Order.Status); ok {
				return result(status, SourceOrder, nil)
			}
		}
	}

	w, ok := e.schedule.Windows(*in.NextDelivery)
	if !ok {
		return result(orderstatus.DerivedOrderReceived, SourceUnconfiguredDay, nil)
	}

	var status orderstatus.Derived
	switch {
	case now.Before(w.CookingStart):
		status = orderstatus.DerivedOrderReceived
	case now.Before(w.DeliveryStart):
		status = orderstatus.DerivedInKitchen
	case now.Before(w.DeliveryEnd):
		status = orderstatus.DerivedDelivering
	default:
		status = orderstatus.DerivedCompleted
	}
	return result(status, SourceTimeWindow, &w)
}

func result(status orderstatus.Derived, source Source, w *Windows) Result {
	return Result{
		Status:     status,
		IsTerminal: status.IsTerminal(),
		Source:     source,
		Windows:    w,
	}
}

// Eligibility is the answer to "can the customer still cancel?".
type Eligibility struct {
	Allowed      bool
	BlockingDate *time.Time
	Cutoff       *time.Time
	Reason       string
}

// CanCancel allows cancellation only while now is at or before the cutoff of
// every pending delivery dated today or later. Deliveries on unconfigured
// weekdays have no cutoff and never block. When blocked, BlockingDate is the
// earliest delivery whose cutoff has passed.
func (e *Engine) CanCancel(pending []time.Time, now time.Time) Eligibility {
	loc := e.schedule.Location()
	now = now.In(loc)
	today := e.Today(now)

	var blocking *Windows
	for _, d := range pending {
		day := CalendarDate(d, loc)
		if day.Before(today) {
			continue
		}
		w, ok := e.schedule.Windows(day)
		if !ok {
			continue
		}
		if !now.After(w.Cutoff) {
			continue
		}
		if blocking == nil || w.DeliveryDate.Before(blocking.DeliveryDate) {
			wc := w
			blocking = &wc
		}
	}

	if blocking == nil {
		return Eligibility{Allowed: true, Reason: "all upcoming deliveries are still before their cutoff"}
	}

	date := blocking.DeliveryDate
	cutoff := blocking.Cutoff
	return Eligibility{
		Allowed:      false,
		BlockingDate: &date,
		Cutoff:       &cutoff,
		Reason: fmt.Sprintf("the delivery on %s passed its cancellation cutoff at %s",
			date.Format("Monday, 2 Jan 2006"), cutoff.Format("Mon 2 Jan 15:04")),
	}
}
