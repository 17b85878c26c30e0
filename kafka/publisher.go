package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/storefront/pkg/logger"
)

// Publisher wraps the Kafka producer
type Publisher struct {
	producer sarama.SyncProducer
	brokers  []string
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Msg("Kafka publisher initialized")

	return &Publisher{
		producer: producer,
		brokers:  brokers,
	}, nil
}

// PublishOrderPlaced publishes an order placed event with tracing
func (p *Publisher) PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish.order_placed",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", TopicOrderPlaced),
			attribute.String("messaging.destination_kind", "topic"),
			attribute.String("event.type", EventTypeOrderPlaced),
			attribute.String("order.id", event.OrderID),
			attribute.Int("order.item_count", event.ItemCount),
			attribute.Int64("user.id", int64(event.UserID)),
		),
	)
	defer span.End()

	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	event.EventType = EventTypeOrderPlaced
	event.Timestamp = time.Now()

	span.SetAttributes(attribute.String("event.id", event.EventID))

	eventBytes, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Inject trace context into Kafka headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{
			Key:   []byte("event_type"),
			Value: []byte(EventTypeOrderPlaced),
		},
		{
			Key:   []byte("event_id"),
			Value: []byte(event.EventID),
		},
	}
	for key, value := range carrier {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte(key),
			Value: []byte(value),
		})
	}

	msg := &sarama.ProducerMessage{
		Topic:   TopicOrderPlaced,
		Key:     sarama.StringEncoder(event.OrderID),
		Value:   sarama.ByteEncoder(eventBytes),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		return fmt.Errorf("failed to publish order placed event: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("messaging.kafka.partition", int64(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)

	logger.Info(ctx).
		Str("event_id", event.EventID).
		Str("order_id", event.OrderID).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Order placed event published")

	return nil
}

// Close shuts down the producer
func (p *Publisher) Close() error {
	return p.producer.Close()
}
