// Package ledgerrepo stores the append-only ledger.
package ledgerrepo

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/adapters/out/postgres/pgconv"
	"dispatch/internal/core/domain/model/ledger"
	"dispatch/internal/core/domain/model/wallet"
)

// UniqueKeyIndex guarantees at most one entry per wallet and idempotency key.
const UniqueKeyIndex = "idx_ledger_wallet_key"

// EntryDTO is one ledger line. Seq is assigned by the database and gives creation order.
type EntryDTO struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Seq            int64             `gorm:"autoIncrement;not null;index"`
	WalletID       string            `gorm:"size:64;not null;uniqueIndex:idx_ledger_wallet_key,priority:1"`
	IdempotencyKey string            `gorm:"size:160;not null;uniqueIndex:idx_ledger_wallet_key,priority:2;index:idx_ledger_key_type,priority:1"`
	Type           string            `gorm:"size:32;not null;index:idx_ledger_key_type,priority:2"`
	Amount         int64             `gorm:"not null"`
	BalanceBefore  int64             `gorm:"not null"`
	BalanceAfter   int64             `gorm:"not null"`
	OrderID        *uuid.UUID        `gorm:"type:uuid;index"`
	PayoutID       *uuid.UUID        `gorm:"type:uuid"`
	TopupID        *uuid.UUID        `gorm:"type:uuid"`
	Metadata       map[string]string `gorm:"serializer:json;type:jsonb"`
	CreatedAt      time.Time         `gorm:"not null"`
}

func (EntryDTO) TableName() string {
	return "transactions"
}

func fromDomain(e *ledger.Entry) EntryDTO {
	refs := e.References()
	return EntryDTO{
		ID:             e.ID().Bytes(),
		WalletID:       e.WalletID().String(),
		IdempotencyKey: e.Key().String(),
		Type:           e.Type().String(),
		Amount:         e.Amount(),
		BalanceBefore:  e.BalanceBefore(),
		BalanceAfter:   e.BalanceAfter(),
		OrderID:        pgconv.UUIDPtr(refs.OrderID),
		PayoutID:       pgconv.UUIDPtr(refs.PayoutID),
		TopupID:        pgconv.UUIDPtr(refs.TopupID),
		Metadata:       e.Metadata(),
		CreatedAt:      e.CreatedAt(),
	}
}

func toDomain(dto EntryDTO) (*ledger.Entry, error) {
	id, idErr := pgconv.ToUUID(dto.ID)
	walletID, walletErr := wallet.ParseID(dto.WalletID)
	orderID, orderErr := pgconv.ToUUIDPtr(dto.OrderID)
	payoutID, payoutErr := pgconv.ToUUIDPtr(dto.PayoutID)
	topupID, topupErr := pgconv.ToUUIDPtr(dto.TopupID)
	if err := errors.Join(idErr, walletErr, orderErr, payoutErr, topupErr); err != nil {
		return nil, err
	}

	return ledger.RestoreEntry(id, dto.Seq, ledger.Movement{
		WalletID:      walletID,
		Key:           ledger.Key(dto.IdempotencyKey),
		Type:          ledger.EntryType(dto.Type),
		Amount:        dto.Amount,
		BalanceBefore: dto.BalanceBefore,
		BalanceAfter:  dto.BalanceAfter,
		References: ledger.References{
			OrderID:  orderID,
			PayoutID: payoutID,
			TopupID:  topupID,
		},
		Metadata: dto.Metadata,
	}, dto.CreatedAt.UTC())
}
