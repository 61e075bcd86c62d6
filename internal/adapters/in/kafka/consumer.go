// Package kafka consumes the order change topic and feeds the dispatcher.
//
// Delivery is at least once. A message is marked only after its change was handled,
// dead-lettered or judged unprocessable, so a crash in between leads to redelivery and
// the handlers' own idempotency absorbs the repeat.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/cenkalti/backoff/v4"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/ports"
)

type (
	ChangeDispatcher interface {
		Dispatch(ctx context.Context, change events.OrderChange) error
	}

	DeadLetterWriter interface {
		Write(ctx context.Context, msg *sarama.ConsumerMessage, cause error, at time.Time) error
	}
)

// RetryPolicy bounds the redelivery of retryable failures inside one claim.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 5, InitialInterval: 200 * time.Millisecond, MaxInterval: 10 * time.Second}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx)
}

// NewGroup joins the consumer group. Offsets start at the oldest message so a new group
// replays the retained history instead of skipping it.
func NewGroup(brokers []string, groupID string) (sarama.ConsumerGroup, error) {
	cfg := sarama.NewConfig()
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true
	cfg.Net.DialTimeout = 5 * time.Second
	return sarama.NewConsumerGroup(brokers, groupID, cfg)
}

// Consumer consumes the change topic with one ChangeHandler.
type Consumer struct {
	group   sarama.ConsumerGroup
	topics  []string
	handler *ChangeHandler
	logger  *slog.Logger
}

func NewConsumer(group sarama.ConsumerGroup, topics []string, handler *ChangeHandler, logger *slog.Logger) *Consumer {
	return &Consumer{group: group, topics: topics, handler: handler, logger: logger.With("component", "change_consumer")}
}

// Start blocks until ctx is cancelled or the group fails.
func (c *Consumer) Start(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			c.logger.WarnContext(ctx, "consumer group error", "error", err)
		}
	}()

	for {
		if err := c.group.Consume(ctx, c.topics, c.handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		// Consume returns on rebalance as well as on cancellation.
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

// ChangeHandler is the sarama.ConsumerGroupHandler of the change topic.
type ChangeHandler struct {
	dispatcher  ChangeDispatcher
	deadLetters DeadLetterWriter
	alerts      ports.AlertPublisher
	clock       ports.Clock
	retry       RetryPolicy
	logger      *slog.Logger
}

func NewChangeHandler(
	dispatcher ChangeDispatcher,
	deadLetters DeadLetterWriter,
	alerts ports.AlertPublisher,
	clock ports.Clock,
	retry RetryPolicy,
	logger *slog.Logger,
) *ChangeHandler {
	return &ChangeHandler{
		dispatcher:  dispatcher,
		deadLetters: deadLetters,
		alerts:      alerts,
		clock:       clock,
		retry:       retry,
		logger:      logger.With("component", "change_handler"),
	}
}

func (h *ChangeHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *ChangeHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *ChangeHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if err := h.Process(sess.Context(), msg); err != nil {
			// Leaving the message unmarked ends the session; it is redelivered after the
			// rebalance.
			return err
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}

// Process handles one message. A nil result means the message may be marked.
func (h *ChangeHandler) Process(ctx context.Context, msg *sarama.ConsumerMessage) error {
	log := h.logger.With("topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)

	change, err := events.DecodeOrderChange(msg.Value)
	if err != nil {
		log.ErrorContext(ctx, "undecodable order change", "error", err)
		return h.deadLetter(ctx, msg, err)
	}
	log = log.With("event_id", change.EventID, "order_id", change.OrderID.String())

	attempts := 0
	err = backoff.Retry(func() error {
		attempts++
		dispatchErr := h.dispatcher.Dispatch(ctx, change)
		if dispatchErr != nil && !events.IsRetryable(dispatchErr) {
			return backoff.Permanent(dispatchErr)
		}
		return dispatchErr
	}, h.retry.backOff(ctx))

	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case !events.IsRetryable(err):
		log.ErrorContext(ctx, "order change failed terminally", "error", err, "attempts", attempts)
		return nil
	}

	log.ErrorContext(ctx, "order change delivery exhausted", "error", err, "attempts", attempts)
	if dlqErr := h.deadLetter(ctx, msg, err); dlqErr != nil {
		return dlqErr
	}
	alert := audit.NewDeliveryExhausted(change.EventID, change.OrderID, err, h.clock.Now())
	if alertErr := h.alerts.Publish(ctx, alert); alertErr != nil {
		log.WarnContext(ctx, "failed to publish delivery alert", "error", alertErr)
	}
	return nil
}

func (h *ChangeHandler) deadLetter(ctx context.Context, msg *sarama.ConsumerMessage, cause error) error {
	if err := h.deadLetters.Write(ctx, msg, cause, h.clock.Now()); err != nil {
		return fmt.Errorf("dead letter for offset %d: %w", msg.Offset, err)
	}
	return nil
}
