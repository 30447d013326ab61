// Package kafka publishes workflow events to a Kafka topic for the kitchen
// ticket printers and reporting consumers.
package kafka

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"mealbox-be/pkg/events"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

type Config struct {
	Brokers  []string
	Topic    string
	Username string
	Password string
}

// writer is the subset of *kafka.Writer the producer needs.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	w     writer
	topic string
}

// NewProducer builds a synchronous writer. SASL/PLAIN is enabled when a
// username is set, always over TLS.
func NewProducer(cfg Config) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: no topic configured")
	}

	transport := &kafka.Transport{
		DialTimeout: 10 * time.Second,
	}
	if cfg.Username != "" {
		transport.SASL = plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
		transport.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		Transport:              transport,
	}
	return &Producer{w: w, topic: cfg.Topic}, nil
}

// Publish writes one event. The key keeps every event about the same
// subscription or action on one partition so consumers see them in order.
func (p *Producer) Publish(ctx context.Context, event events.Event) error {
	data, err := events.Encode(event)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(partitionKey(event)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType())},
		},
		Time: event.Timestamp(),
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: failed to write %s to %s: %w", event.EventType(), p.topic, err)
	}
	return nil
}

func partitionKey(event events.Event) string {
	for _, field := range []string{"subscription_id", "action_id"} {
		if v, ok := event.Payload()[field]; ok {
			if s := fmt.Sprint(v); s != "" {
				return s
			}
		}
	}
	return event.EventType()
}

func (p *Producer) Name() string {
	return "kafka"
}

func (p *Producer) Close() error {
	return p.w.Close()
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
