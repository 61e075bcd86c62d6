// Package kafka publishes order changes and dead letters to Kafka.
package kafka

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"

	"dispatch/internal/core/ports"
)

// Message headers carried next to every change.
const (
	HeaderEventID     = "event_id"
	HeaderError       = "error"
	HeaderSourceTopic = "source_topic"
	HeaderFailedAt    = "failed_at"
)

// NewProducerConfig configures an idempotent producer that waits for every in-sync
// replica, so a successful send means the change is durable.
func NewProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	config.Net.DialTimeout = 5 * time.Second
	return config
}

func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	return producer, nil
}

// ChangePublisher sends outbox rows to the order change topic. Messages are keyed by
// order id so the changes of one order stay in one partition, in version order.
type ChangePublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewChangePublisher(producer sarama.SyncProducer, topic string) *ChangePublisher {
	return &ChangePublisher{producer: producer, topic: topic}
}

// Publish returns after the broker acknowledged every record, or with the first failure.
func (p *ChangePublisher) Publish(ctx context.Context, records []ports.OrderChangeRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msgs := make([]*sarama.ProducerMessage, 0, len(records))
	for _, rec := range records {
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(rec.OrderID.String()),
			Value: sarama.ByteEncoder(rec.Payload),
			Headers: []sarama.RecordHeader{
				{Key: []byte(HeaderEventID), Value: []byte(rec.EventID)},
			},
			Timestamp: rec.CreatedAt,
		})
	}

	if err := p.producer.SendMessages(msgs); err != nil {
		return fmt.Errorf("failed to send %d order changes: %w", len(msgs), err)
	}
	return nil
}

// DeadLetterWriter copies a message that could not be processed to the DLQ topic.
type DeadLetterWriter struct {
	producer sarama.SyncProducer
	topic    string
}

func NewDeadLetterWriter(producer sarama.SyncProducer, topic string) *DeadLetterWriter {
	return &DeadLetterWriter{producer: producer, topic: topic}
}

func (w *DeadLetterWriter) Write(ctx context.Context, msg *sarama.ConsumerMessage, cause error, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	headers := make([]sarama.RecordHeader, 0, len(msg.Headers)+3)
	for _, h := range msg.Headers {
		if h != nil {
			headers = append(headers, *h)
		}
	}
	headers = append(headers,
		sarama.RecordHeader{Key: []byte(HeaderError), Value: []byte(cause.Error())},
		sarama.RecordHeader{Key: []byte(HeaderSourceTopic), Value: []byte(msg.Topic + "/" + strconv.Itoa(int(msg.Partition)))},
		sarama.RecordHeader{Key: []byte(HeaderFailedAt), Value: []byte(at.UTC().Format(time.RFC3339))},
	)

	_, _, err := w.producer.SendMessage(&sarama.ProducerMessage{
		Topic:   w.topic,
		Key:     sarama.ByteEncoder(msg.Key),
		Value:   sarama.ByteEncoder(msg.Value),
		Headers: headers,
	})
	if err != nil {
		return fmt.Errorf("failed to send dead letter: %w", err)
	}
	return nil
}
