package service

import (
	"context"
	"encoding/json"

	"mealbox-be/internal/pkg/logger"
	pkgEvents "mealbox-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// DashboardTopic carries workflow events to the live staff dashboards.
const DashboardTopic = "dashboard.feed"

// Audiences a dashboard connection can join.
const (
	AudienceAdmin   = "admin"
	AudienceKitchen = "kitchen"
	AudienceRider   = "rider"
)

// FeedDelivery pushes a serialized frame to every connection of the given
// audiences. Implemented by the websocket hub.
type FeedDelivery interface {
	Deliver(audiences []string, frame []byte)
}

// FeedSink puts committed workflow events on the in-process bus. It is one
// of the sinks of the event publisher.
type FeedSink struct {
	pubSub *gochannel.GoChannel
}

func NewFeedSink(pubSub *gochannel.GoChannel) *FeedSink {
	return &FeedSink{pubSub: pubSub}
}

func (s *FeedSink) Name() string {
	return "dashboard"
}

func (s *FeedSink) Publish(ctx context.Context, event pkgEvents.Event) error {
	data, err := pkgEvents.Encode(event)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("event_type", event.EventType())
	return s.pubSub.Publish(DashboardTopic, msg)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	delivery  FeedDelivery
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	delivery FeedDelivery,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		delivery:  delivery,
		logger:    logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	event, err := pkgEvents.Decode(msg.Payload)
	if err != nil {
		cs.logger.Error("DashboardFeed", "Dropping undecodable message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		// Ack poison messages so they are not redelivered forever
		msg.Ack()
		return
	}

	audiences := Audiences(event.EventType())
	if len(audiences) == 0 {
		msg.Ack()
		return
	}

	frame, err := json.Marshal(map[string]interface{}{
		"type":        event.EventType(),
		"occurred_at": event.Timestamp(),
		"data":        event.Payload(),
	})
	if err != nil {
		cs.logger.Error("DashboardFeed", "Failed to build frame", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	cs.delivery.Deliver(audiences, frame)
	msg.Ack()
}

// Audiences decides which dashboards see an event type.
func Audiences(eventType string) []string {
	switch eventType {
	case pkgEvents.TypeOrdersConfirmed:
		return []string{AudienceAdmin, AudienceKitchen}
	case pkgEvents.TypeDeliveryAdvanced, pkgEvents.TypeOrderCancelled, pkgEvents.TypeWorkflowActionUndone:
		return []string{AudienceAdmin, AudienceKitchen, AudienceRider}
	case pkgEvents.TypeSubscriptionCancelled:
		return []string{AudienceAdmin, AudienceKitchen}
	}
	return nil
}
