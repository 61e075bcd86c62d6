package queries

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/metrics"
)

// ValidateAllLedgersQueryHandler replays every wallet. Each invalid wallet is recorded as
// a security alert and published to operators; the discrepancy gauge is set to the
// number of invalid wallets. A wallet that cannot be read does not stop the audit.
type ValidateAllLedgersQueryHandler struct {
	readerFactory LedgerReaderFactory
	alerts        ports.AlertPublisher
	clock         ports.Clock
	logger        *slog.Logger
}

func NewValidateAllLedgersQueryHandler(
	readerFactory LedgerReaderFactory,
	alerts ports.AlertPublisher,
	clock ports.Clock,
	logger *slog.Logger,
) ValidateAllLedgersQueryHandler {
	return ValidateAllLedgersQueryHandler{
		readerFactory: readerFactory,
		alerts:        alerts,
		clock:         clock,
		logger:        logger.With("component", "ledger_audit"),
	}
}

func (h ValidateAllLedgersQueryHandler) Handle(
	ctx context.Context,
	query ValidateAllLedgersQuery,
) (ValidateAllLedgersResponse, error) {
	if err := query.Validate(); err != nil {
		return ValidateAllLedgersResponse{}, err
	}

	ids, err := h.readerFactory.Create().WalletRepository().ListIDs(ctx)
	if err != nil {
		return ValidateAllLedgersResponse{}, err
	}

	var resp ValidateAllLedgersResponse
	var errList []error
	for _, id := range ids {
		if ctx.Err() != nil {
			errList = append(errList, ctx.Err())
			break
		}

		report, replayErr := replayWallet(ctx, h.readerFactory, id)
		if replayErr != nil {
			h.logger.WarnContext(ctx, "failed to audit wallet", "wallet_id", id.String(), "error", replayErr)
			errList = append(errList, replayErr)
			continue
		}
		resp.Checked++
		if report.Valid() {
			continue
		}

		resp.Invalid = append(resp.Invalid, report)
		alert := audit.NewLedgerDiscrepancy(
			id.String(), report.StoredBalance, report.ComputedBalance, len(report.Discrepancies), h.clock.Now(),
		)
		h.logger.ErrorContext(ctx, "ledger discrepancy",
			"wallet_id", id.String(),
			"stored_balance", report.StoredBalance,
			"computed_balance", report.ComputedBalance,
			"broken_entries", len(report.Discrepancies),
		)
		if alertErr := h.raise(ctx, alert); alertErr != nil {
			errList = append(errList, alertErr)
		}
	}

	metrics.LedgerDiscrepancies.Set(float64(len(resp.Invalid)))
	return resp, errors.Join(errList...)
}

// raise stores the alert and then publishes it. Publishing is best effort.
func (h ValidateAllLedgersQueryHandler) raise(ctx context.Context, alert audit.SecurityAlert) error {
	if err := h.readerFactory.Create().AuditRepository().AddSecurityAlert(ctx, alert); err != nil {
		return err
	}
	if err := h.alerts.Publish(ctx, alert); err != nil {
		h.logger.WarnContext(ctx, "failed to publish ledger alert", "wallet_id", alert.WalletID, "error", err)
	}
	return nil
}
