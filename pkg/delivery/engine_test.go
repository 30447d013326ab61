package delivery

import (
	"testing"
	"time"

	"mealbox-be/pkg/orderstatus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sgt = time.FixedZone("SGT", 8*60*60)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, sgt)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestEngine(t *testing.T, days ...time.Weekday) *Engine {
	t.Helper()
	if len(days) == 0 {
		days = []time.Weekday{time.Wednesday, time.Saturday}
	}
	rules := make(map[time.Weekday]Rule, len(days))
	for _, d := range days {
		rules[d] = DefaultRule()
	}
	s, err := NewSchedule(sgt, rules)
	require.NoError(t, err)
	return NewEngine(s)
}

func TestWindowsForSaturdayScenario(t *testing.T) {
	e := newTestEngine(t)

	w, ok := e.Schedule().Windows(date(2025, time.March, 15))
	require.True(t, ok)

	assert.True(t, w.Cutoff.Equal(at(2025, time.March, 13, 8, 0)))
	assert.True(t, w.CookingStart.Equal(at(2025, time.March, 14, 8, 0)))
	assert.True(t, w.DeliveryStart.Equal(at(2025, time.March, 15, 10, 0)))
	assert.True(t, w.DeliveryEnd.Equal(at(2025, time.March, 15, 15, 0)))
}

func TestDeriveBoundaries(t *testing.T) {
	e := newTestEngine(t)
	next := date(2025, time.March, 15)

	tests := []struct {
		name string
		now  time.Time
		want orderstatus.Derived
	}{
		{"well before cooking", at(2025, time.March, 10, 12, 0), orderstatus.DerivedOrderReceived},
		{"one minute before cooking", at(2025, time.March, 14, 7, 59), orderstatus.DerivedOrderReceived},
		{"cooking starts", at(2025, time.March, 14, 8, 0), orderstatus.DerivedInKitchen},
		{"just before delivery", at(2025, time.March, 15, 9, 59), orderstatus.DerivedInKitchen},
		{"delivery starts", at(2025, time.March, 15, 10, 0), orderstatus.DerivedDelivering},
		{"one minute before end", at(2025, time.March, 15, 14, 59), orderstatus.DerivedDelivering},
		{"delivery ends", at(2025, time.March, 15, 15, 0), orderstatus.DerivedCompleted},
		{"evening after", at(2025, time.March, 15, 21, 0), orderstatus.DerivedCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Derive(Input{NextDelivery: &next, Now: tt.now})
			assert.Equal(t, tt.want, res.Status)
			assert.Equal(t, SourceTimeWindow, res.Source)
			assert.Equal(t, tt.want.IsTerminal(), res.IsTerminal)
			assert.NotNil(t, res.Windows)
		})
	}
}

func TestDeriveEvaluatesNowInOperationalTimezone(t *testing.T) {
	e := newTestEngine(t)
	next := date(2025, time.March, 15)

	// 00:00 UTC is 08:00 in SGT.
	res := e.Derive(Input{NextDelivery: &next, Now: time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)})
	assert.Equal(t, orderstatus.DerivedInKitchen, res.Status)

	res = e.Derive(Input{NextDelivery: &next, Now: time.Date(2025, time.March, 13, 23, 59, 0, 0, time.UTC)})
	assert.Equal(t, orderstatus.DerivedOrderReceived, res.Status)
}

func TestDeriveShortCircuits(t *testing.T) {
	e := newTestEngine(t)
	next := date(2025, time.March, 15)
	now := at(2025, time.March, 15, 11, 0)

	t.Run("cancelled subscription wins", func(t *testing.T) {
		res := e.Derive(Input{SubscriptionCancelled: true, NextDelivery: &next, Now: now})
		assert.Equal(t, orderstatus.DerivedCancelled, res.Status)
		assert.True(t, res.IsTerminal)
		assert.Equal(t, SourceSubscription, res.Source)
	})

	t.Run("no future delivery", func(t *testing.T) {
		res := e.Derive(Input{Now: now})
		assert.Equal(t, orderstatus.DerivedCompleted, res.Status)
		assert.Equal(t, SourceNoFutureDelivery, res.Source)
	})

	t.Run("order row takes precedence", func(t *testing.T) {
		res := e.Derive(Input{
			NextDelivery: &next,
			Order:        &OrderSnapshot{Status: "preparing", DeliveryDate: next},
			Now:          at(2025, time.March, 12, 9, 0),
		})
		assert.Equal(t, orderstatus.DerivedInKitchen, res.Status)
		assert.Equal(t, SourceOrder, res.Source)
		assert.Nil(t, res.Windows)
	})

	t.Run("past order row is ignored", func(t *testing.T) {
		res := e.Derive(Input{
			NextDelivery: &next,
			Order:        &OrderSnapshot{Status: "delivered", DeliveryDate: date(2025, time.March, 12)},
			Now:          now,
		})
		assert.Equal(t, orderstatus.DerivedDelivering, res.Status)
		assert.Equal(t, SourceTimeWindow, res.Source)
	})

	t.Run("unknown order status falls through", func(t *testing.T) {
		res := e.Derive(Input{
			NextDelivery: &next,
			Order:        &OrderSnapshot{Status: "on_hold", DeliveryDate: next},
			Now:          now,
		})
		assert.Equal(t, orderstatus.DerivedDelivering, res.Status)
	})

	t.Run("unconfigured weekday", func(t *testing.T) {
		tuesday := date(2025, time.March, 18)
		res := e.Derive(Input{NextDelivery: &tuesday, Now: at(2025, time.March, 18, 12, 0)})
		assert.Equal(t, orderstatus.DerivedOrderReceived, res.Status)
		assert.Equal(t, SourceUnconfiguredDay, res.Source)
	})
}

func TestWindowsAcrossYearBoundary(t *testing.T) {
	e := newTestEngine(t)

	w, ok := e.Schedule().Windows(date(2025, time.January, 1))
	require.True(t, ok)
	assert.True(t, w.Cutoff.Equal(at(2024, time.December, 30, 8, 0)))
	assert.True(t, w.CookingStart.Equal(at(2024, time.December, 31, 8, 0)))
}

func TestCanCancel(t *testing.T) {
	e := newTestEngine(t)
	saturday := date(2025, time.March, 15)

	t.Run("exactly at cutoff", func(t *testing.T) {
		el := e.CanCancel([]time.Time{saturday}, at(2025, time.March, 13, 8, 0))
		assert.True(t, el.Allowed)
		assert.Nil(t, el.BlockingDate)
	})

	t.Run("one second past cutoff", func(t *testing.T) {
		el := e.CanCancel([]time.Time{saturday}, at(2025, time.March, 13, 8, 0).Add(time.Second))
		assert.False(t, el.Allowed)
		require.NotNil(t, el.BlockingDate)
		assert.Equal(t, "2025-03-15", el.BlockingDate.Format("2006-01-02"))
		assert.Contains(t, el.Reason, "Saturday, 15 Mar 2025")
	})

	t.Run("no pending deliveries", func(t *testing.T) {
		el := e.CanCancel(nil, at(2025, time.March, 13, 9, 0))
		assert.True(t, el.Allowed)
	})

	t.Run("past deliveries never block", func(t *testing.T) {
		el := e.CanCancel([]time.Time{saturday, date(2025, time.March, 26)}, at(2025, time.March, 17, 9, 0))
		assert.True(t, el.Allowed)
	})

	t.Run("unconfigured weekday never blocks", func(t *testing.T) {
		el := e.CanCancel([]time.Time{date(2025, time.March, 18)}, at(2025, time.March, 17, 9, 0))
		assert.True(t, el.Allowed)
	})
}

func TestCanCancelReportsEarliestBlockingDelivery(t *testing.T) {
	e := newTestEngine(t, time.Saturday, time.Sunday)

	el := e.CanCancel(
		[]time.Time{date(2025, time.March, 16), date(2025, time.March, 15), date(2025, time.March, 22)},
		at(2025, time.March, 14, 9, 0),
	)
	assert.False(t, el.Allowed)
	require.NotNil(t, el.BlockingDate)
	assert.Equal(t, "2025-03-15", el.BlockingDate.Format("2006-01-02"))
	require.NotNil(t, el.Cutoff)
	assert.True(t, el.Cutoff.Equal(at(2025, time.March, 13, 8, 0)))
}
