package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/metrics"
)

// ExpireStaleOrdersCommandHandler expires each stale order in its own transaction. The
// order is locked and re-checked first, so an order accepted after the scan is left
// alone. A failure on one order does not stop the batch.
type ExpireStaleOrdersCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      ports.Clock
	logger     *slog.Logger
}

func NewExpireStaleOrdersCommandHandler(
	uowFactory OrderUoWFactory,
	clock ports.Clock,
	logger *slog.Logger,
) ExpireStaleOrdersCommandHandler {
	return ExpireStaleOrdersCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		logger:     logger.With("component", "expire_stale_orders"),
	}
}

// Handle returns how many orders were expired.
func (h *ExpireStaleOrdersCommandHandler) Handle(ctx context.Context, cmd ExpireStaleOrdersCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	now := h.clock.Now()
	ids, err := h.uowFactory.Create().OrderRepository().ListStaleMatching(ctx, now.Add(-cmd.Timeout()), cmd.Limit())
	if err != nil {
		return 0, err
	}

	expired := 0
	var errList []error
	for _, id := range ids {
		if ctx.Err() != nil {
			errList = append(errList, ctx.Err())
			break
		}
		ok, expireErr := h.expire(ctx, id, cmd)
		if expireErr != nil {
			h.logger.WarnContext(ctx, "failed to expire order", "order_id", id.String(), "error", expireErr)
			errList = append(errList, expireErr)
			continue
		}
		if ok {
			expired++
		}
	}

	metrics.OrdersExpired.Add(float64(expired))
	if expired > 0 {
		h.logger.InfoContext(ctx, "stale orders expired", "count", expired, "scanned", len(ids))
	}
	return expired, errors.Join(errList...)
}

func (h *ExpireStaleOrdersCommandHandler) expire(ctx context.Context, id kernel.UUID, cmd ExpireStaleOrdersCommand) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().GetForUpdate(ctx, id)
	if err != nil {
		return false, err
	}

	now := h.clock.Now()
	if !o.IsStale(now, cmd.Timeout()) {
		return false, nil
	}
	if err = o.Expire(now); err != nil {
		return false, err
	}
	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// CleanStaleDriverLocationsCommandHandler deletes stale driver positions batch by batch
// until a batch comes back short.
type CleanStaleDriverLocationsCommandHandler struct {
	uowFactory LocationUoWFactory
	clock      ports.Clock
	logger     *slog.Logger
}

func NewCleanStaleDriverLocationsCommandHandler(
	uowFactory LocationUoWFactory,
	clock ports.Clock,
	logger *slog.Logger,
) CleanStaleDriverLocationsCommandHandler {
	return CleanStaleDriverLocationsCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		logger:     logger.With("component", "clean_driver_locations"),
	}
}

func (h *CleanStaleDriverLocationsCommandHandler) Handle(
	ctx context.Context,
	cmd CleanStaleDriverLocationsCommand,
) (int64, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	cutoff := h.clock.Now().Add(-cmd.MaxAge())
	var total int64
	for {
		n, err := h.deleteBatch(ctx, cutoff, cmd.Limit())
		total += n
		if err != nil {
			return total, err
		}
		if n < int64(cmd.Limit()) {
			break
		}
	}

	if total > 0 {
		h.logger.InfoContext(ctx, "stale driver locations removed", "count", total)
	}
	return total, nil
}

func (h *CleanStaleDriverLocationsCommandHandler) deleteBatch(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	n, err := uow.LocationRepository().DeleteStale(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}
	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}
	return n, nil
}

// RelayOrderChangesCommandHandler publishes unpublished outbox rows and marks them
// published only after the broker acknowledged them. A crash in between republishes the
// batch; consumers dedupe by event id.
type RelayOrderChangesCommandHandler struct {
	uowFactory OutboxUoWFactory
	publisher  ports.ChangePublisher
	clock      ports.Clock
}

func NewRelayOrderChangesCommandHandler(
	uowFactory OutboxUoWFactory,
	publisher ports.ChangePublisher,
	clock ports.Clock,
) RelayOrderChangesCommandHandler {
	return RelayOrderChangesCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		clock:      clock,
	}
}

// Handle returns how many changes were relayed. A full batch means more may be waiting.
func (h *RelayOrderChangesCommandHandler) Handle(ctx context.Context, cmd RelayOrderChangesCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	records, err := uow.OutboxRepository().ListUnpublished(ctx, cmd.Limit())
	if err != nil || len(records) == 0 {
		return 0, err
	}

	if err = h.publisher.Publish(ctx, records); err != nil {
		return 0, err
	}

	seqs := make([]int64, len(records))
	for i, r := range records {
		seqs[i] = r.Seq
	}
	if err = uow.OutboxRepository().MarkPublished(ctx, seqs, h.clock.Now()); err != nil {
		return 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}
	return len(records), nil
}
