package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"mealbox-be/pkg/events"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestProducer_PublishKeysBySubscription(t *testing.T) {
	w := &recordingWriter{}
	p := &Producer{w: w, topic: "mealbox.workflow"}

	err := p.Publish(context.Background(), events.BaseEvent{
		Type:       events.TypeOrderCancelled,
		Data:       map[string]interface{}{"subscription_id": "sub-1", "action_id": "act-1"},
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "sub-1", string(w.msgs[0].Key))
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)
	assert.Equal(t, events.TypeOrderCancelled, string(w.msgs[0].Headers[0].Value))

	decoded, err := events.Decode(w.msgs[0].Value)
	require.NoError(t, err)
	assert.Equal(t, events.TypeOrderCancelled, decoded.Type)
}

func TestProducer_PublishFallsBackToActionKey(t *testing.T) {
	w := &recordingWriter{}
	p := &Producer{w: w, topic: "t"}
	require.NoError(t, p.Publish(context.Background(), events.BaseEvent{
		Type: events.TypeOrdersConfirmed,
		Data: map[string]interface{}{"action_id": "act-9"},
	}))
	assert.Equal(t, "act-9", string(w.msgs[0].Key))
}

func TestProducer_PublishError(t *testing.T) {
	p := &Producer{w: &recordingWriter{err: errors.New("broker down")}, topic: "t"}
	err := p.Publish(context.Background(), events.BaseEvent{Type: events.TypeOrdersConfirmed})
	assert.ErrorContains(t, err, "broker down")
}

func TestNewProducer_RequiresBrokersAndTopic(t *testing.T) {
	_, err := NewProducer(Config{Topic: "t"})
	assert.Error(t, err)
	_, err = NewProducer(Config{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092, ,b:9092 "))
	assert.Nil(t, ParseBrokers(""))
}
