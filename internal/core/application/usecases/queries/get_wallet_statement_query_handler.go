package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/wallet"
)

// GetWalletStatementQueryHandler reads balances and recent ledger lines in one
// repeatable-read snapshot, so the lines always add up to the balance shown.
type GetWalletStatementQueryHandler struct {
	db *gorm.DB
}

func NewGetWalletStatementQueryHandler(db *gorm.DB) GetWalletStatementQueryHandler {
	return GetWalletStatementQueryHandler{db: db}
}

func (h GetWalletStatementQueryHandler) Handle(
	ctx context.Context,
	query GetWalletStatementQuery,
) (GetWalletStatementQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetWalletStatementQueryResponse{}, err
	}
	if err := query.authorize(); err != nil {
		return GetWalletStatementQueryResponse{}, err
	}

	resp := GetWalletStatementQueryResponse{
		WalletID: query.WalletID(),
		Currency: wallet.Currency,
		Lines:    make([]StatementLine, 0),
	}

	tx := h.db.WithContext(ctx).Begin(&sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if tx.Error != nil {
		return GetWalletStatementQueryResponse{}, tx.Error
	}
	defer tx.Rollback()

	err := tx.Raw(`
		SELECT balance, pending_payout, currency
		FROM wallets
		WHERE id = ?
	`, query.WalletID().String()).Row().Scan(&resp.Balance, &resp.PendingPayout, &resp.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return resp, nil
	}
	if err != nil {
		return GetWalletStatementQueryResponse{}, err
	}
	resp.Available = resp.Balance - resp.PendingPayout

	rows, err := tx.Raw(`
		SELECT
			seq,
			type,
			amount,
			balance_after,
			idempotency_key,
			order_id,
			created_at
		FROM transactions
		WHERE wallet_id = ?
		ORDER BY seq DESC
		LIMIT ?
	`, query.WalletID().String(), query.Lines()).Rows()
	if err != nil {
		return GetWalletStatementQueryResponse{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line      StatementLine
			orderID   *uuid.UUID
			createdAt time.Time
		)
		err = rows.Scan(&line.Seq, &line.Type, &line.Amount, &line.BalanceAfter, &line.IdempotencyKey, &orderID, &createdAt)
		if err != nil {
			return GetWalletStatementQueryResponse{}, err
		}
		if orderID != nil {
			id, idErr := kernel.UUIDFromBytes(orderID[:])
			if idErr != nil {
				return GetWalletStatementQueryResponse{}, idErr
			}
			line.OrderID = &id
		}
		line.CreatedAt = createdAt.UTC()
		resp.Lines = append(resp.Lines, line)
	}

	if err = rows.Err(); err != nil {
		return GetWalletStatementQueryResponse{}, err
	}

	return resp, nil
}
