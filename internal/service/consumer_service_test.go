package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"mealbox-be/internal/pkg/logger"
	pkgEvents "mealbox-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedFrame struct {
	audiences []string
	frame     []byte
}

type recordingDelivery struct {
	mu     sync.Mutex
	frames []recordedFrame
}

func (r *recordingDelivery) Deliver(audiences []string, frame []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, recordedFrame{audiences: audiences, frame: frame})
}

func (r *recordingDelivery) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func TestDashboardFeed_SinkToHub(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	delivery := &recordingDelivery{}
	consumer := NewConsumerService(pubSub, DashboardTopic, delivery, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	sink := NewFeedSink(pubSub)
	require.NoError(t, sink.Publish(ctx, pkgEvents.BaseEvent{
		Type:       pkgEvents.TypeOrdersConfirmed,
		Data:       map[string]interface{}{"rows_updated": 40},
		OccurredAt: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
	}))
	// Poison message is acked and skipped
	require.NoError(t, pubSub.Publish(DashboardTopic, message.NewMessage(watermill.NewUUID(), []byte("not json"))))
	require.NoError(t, sink.Publish(ctx, pkgEvents.BaseEvent{Type: pkgEvents.TypeDeliveryAdvanced, Data: map[string]interface{}{}}))

	require.Eventually(t, func() bool { return delivery.count() == 2 }, 2*time.Second, 10*time.Millisecond)

	delivery.mu.Lock()
	defer delivery.mu.Unlock()
	assert.Equal(t, []string{AudienceAdmin, AudienceKitchen}, delivery.frames[0].audiences)
	var frame map[string]interface{}
	require.NoError(t, json.Unmarshal(delivery.frames[0].frame, &frame))
	assert.Equal(t, pkgEvents.TypeOrdersConfirmed, frame["type"])
	assert.Contains(t, delivery.frames[1].audiences, AudienceRider)
}

func TestAudiences_UnknownEventHasNone(t *testing.T) {
	assert.Empty(t, Audiences("SOMETHING_ELSE"))
}
