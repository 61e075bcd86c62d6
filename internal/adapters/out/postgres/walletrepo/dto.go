// Package walletrepo maps wallets to the wallets table.
package walletrepo

import (
	"time"

	"dispatch/internal/core/domain/model/wallet"
)

// WalletDTO is the row of one wallet. The check constraint backs the non-negative
// balance rule enforced by the accessor.
type WalletDTO struct {
	ID            string    `gorm:"size:64;primaryKey"`
	Balance       int64     `gorm:"not null;default:0;check:chk_wallets_balance,balance >= 0"`
	TotalCredited int64     `gorm:"not null;default:0"`
	TotalDebited  int64     `gorm:"not null;default:0"`
	PendingPayout int64     `gorm:"not null;default:0;check:chk_wallets_pending,pending_payout >= 0"`
	Currency      string    `gorm:"size:8;not null"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (WalletDTO) TableName() string {
	return "wallets"
}

func fromDomain(w *wallet.Wallet) WalletDTO {
	return WalletDTO{
		ID:            w.ID().String(),
		Balance:       w.Balance(),
		TotalCredited: w.TotalCredited(),
		TotalDebited:  w.TotalDebited(),
		PendingPayout: w.PendingPayout(),
		Currency:      w.Currency(),
		CreatedAt:     w.CreatedAt(),
		UpdatedAt:     w.UpdatedAt(),
	}
}

func toDomain(dto WalletDTO) (*wallet.Wallet, error) {
	id, err := wallet.ParseID(dto.ID)
	if err != nil {
		return nil, err
	}
	return wallet.RestoreWallet(
		id,
		dto.Balance, dto.TotalCredited, dto.TotalDebited, dto.PendingPayout,
		dto.Currency,
		dto.CreatedAt.UTC(), dto.UpdatedAt.UTC(),
	)
}
