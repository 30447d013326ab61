package events

import (
	"context"
	"time"

	"mealbox-be/internal/pkg/logger"
	pkgEvents "mealbox-be/pkg/events"

	"github.com/google/uuid"
)

// Publisher abstracts event publishing for order workflow operations.
// Publishing happens after commit and never fails the caller.
type Publisher interface {
	PublishOrdersConfirmed(ctx context.Context, actionId uuid.UUID, actorId string, date time.Time, rows, subscriptions int)
	PublishOrderCancelled(ctx context.Context, actionId, subscriptionId uuid.UUID, actorId string, date time.Time, reason string, rows int)
	PublishDeliveryAdvanced(ctx context.Context, actionId, scheduleId, subscriptionId uuid.UUID, actorId, status string)
	PublishActionUndone(ctx context.Context, actionId uuid.UUID, actionType, actorId string, rowsRestored, subscriptionsRestored int)
	PublishSubscriptionCancelled(ctx context.Context, subscriptionId, userId uuid.UUID, reason string, rows int)
}

// Sink is one transport the publisher fans out to.
type Sink interface {
	Name() string
	Publish(ctx context.Context, event pkgEvents.Event) error
}

// BusPublisher implements Publisher over any number of sinks (NATS, Kafka,
// the in-process dashboard feed).
type BusPublisher struct {
	sinks  []Sink
	logger logger.ILogger
	now    func() time.Time
}

func NewBusPublisher(logger logger.ILogger, sinks ...Sink) *BusPublisher {
	return &BusPublisher{
		sinks:  sinks,
		logger: logger,
		now:    time.Now,
	}
}

func (p *BusPublisher) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	now := p.now()
	data["occurred_at"] = now
	evt := pkgEvents.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: now,
	}
	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, evt); err != nil {
			p.logger.Error("ORDER_EVENTS", "Failed to publish "+eventType+" event", map[string]interface{}{
				"sink":  sink.Name(),
				"error": err.Error(),
			})
		}
	}
}

// PublishOrdersConfirmed emits ORDERS_CONFIRMED
func (p *BusPublisher) PublishOrdersConfirmed(ctx context.Context, actionId uuid.UUID, actorId string, date time.Time, rows, subscriptions int) {
	p.publish(ctx, pkgEvents.TypeOrdersConfirmed, map[string]interface{}{
		"action_id":             actionId.String(),
		"actor_id":              actorId,
		"delivery_date":         date.Format("2006-01-02"),
		"rows_updated":          rows,
		"subscriptions_updated": subscriptions,
		"entity_type":           "workflow_action",
		"entity_id":             actionId.String(),
	})
}

// PublishOrderCancelled emits ORDER_CANCELLED
func (p *BusPublisher) PublishOrderCancelled(ctx context.Context, actionId, subscriptionId uuid.UUID, actorId string, date time.Time, reason string, rows int) {
	p.publish(ctx, pkgEvents.TypeOrderCancelled, map[string]interface{}{
		"action_id":       actionId.String(),
		"subscription_id": subscriptionId.String(),
		"actor_id":        actorId,
		"delivery_date":   date.Format("2006-01-02"),
		"reason":          reason,
		"rows_updated":    rows,
		"entity_type":     "subscription",
		"entity_id":       subscriptionId.String(),
	})
}

// PublishDeliveryAdvanced emits DELIVERY_ADVANCED
func (p *BusPublisher) PublishDeliveryAdvanced(ctx context.Context, actionId, scheduleId, subscriptionId uuid.UUID, actorId, status string) {
	p.publish(ctx, pkgEvents.TypeDeliveryAdvanced, map[string]interface{}{
		"action_id":       actionId.String(),
		"schedule_id":     scheduleId.String(),
		"subscription_id": subscriptionId.String(),
		"actor_id":        actorId,
		"workflow_status": status,
		"entity_type":     "delivery_schedule",
		"entity_id":       scheduleId.String(),
	})
}

// PublishActionUndone emits WORKFLOW_ACTION_UNDONE
func (p *BusPublisher) PublishActionUndone(ctx context.Context, actionId uuid.UUID, actionType, actorId string, rowsRestored, subscriptionsRestored int) {
	p.publish(ctx, pkgEvents.TypeWorkflowActionUndone, map[string]interface{}{
		"action_id":              actionId.String(),
		"action_type":            actionType,
		"actor_id":               actorId,
		"rows_restored":          rowsRestored,
		"subscriptions_restored": subscriptionsRestored,
		"entity_type":            "workflow_action",
		"entity_id":              actionId.String(),
	})
}

// PublishSubscriptionCancelled emits SUBSCRIPTION_CANCELLED for customer
// initiated cancellations.
func (p *BusPublisher) PublishSubscriptionCancelled(ctx context.Context, subscriptionId, userId uuid.UUID, reason string, rows int) {
	p.publish(ctx, pkgEvents.TypeSubscriptionCancelled, map[string]interface{}{
		"subscription_id": subscriptionId.String(),
		"user_id":         userId.String(),
		"reason":          reason,
		"rows_cancelled":  rows,
		"entity_type":     "subscription",
		"entity_id":       subscriptionId.String(),
	})
}
