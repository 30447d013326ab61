package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"mealbox-be/internal/pkg/logger"
	pkgEvents "mealbox-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	name   string
	events []pkgEvents.Event
	err    error
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Publish(ctx context.Context, event pkgEvents.Event) error {
	s.events = append(s.events, event)
	return s.err
}

func TestBusPublisher_FansOutToEverySink(t *testing.T) {
	failing := &recordingSink{name: "nats", err: errors.New("no responders")}
	ok := &recordingSink{name: "kafka"}
	p := NewBusPublisher(logger.NewNopLogger(), failing, ok)

	actionId, subId := uuid.New(), uuid.New()
	p.PublishOrderCancelled(context.Background(), actionId, subId, "admin-1",
		time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), "allergy", 2)

	require.Len(t, failing.events, 1, "a failing sink does not stop the others")
	require.Len(t, ok.events, 1)
	evt := ok.events[0]
	assert.Equal(t, pkgEvents.TypeOrderCancelled, evt.EventType())
	assert.Equal(t, subId.String(), evt.Payload()["subscription_id"])
	assert.Equal(t, "2025-03-15", evt.Payload()["delivery_date"])
	assert.Equal(t, 2, evt.Payload()["rows_updated"])
}

func TestBusPublisher_NoSinks(t *testing.T) {
	p := NewBusPublisher(logger.NewNopLogger())
	assert.NotPanics(t, func() {
		p.PublishOrdersConfirmed(context.Background(), uuid.New(), "admin-1", time.Now(), 1, 1)
	})
}
