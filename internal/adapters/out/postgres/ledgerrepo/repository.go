package ledgerrepo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/domain/model/ledger"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/pkg/errs"
)

// GormLedgerRepository implements ports.LedgerRepository using GORM. Entries are only
// ever inserted.
type GormLedgerRepository struct {
	db *gorm.DB
}

func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Add inserts an entry. A duplicate (wallet, key) means a concurrent delivery applied the
// same movement first; the transient error makes the caller retry and observe it.
func (r *GormLedgerRepository) Add(ctx context.Context, entry *ledger.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	dto := fromDomain(entry)
	err := r.db.WithContext(ctx).Omit("Seq").Create(&dto).Error
	if pgerr.IsUniqueViolation(err, UniqueKeyIndex) {
		return errs.NewTransientError(fmt.Errorf("%s already applied to wallet %s: %w", dto.IdempotencyKey, dto.WalletID, err))
	}
	return pgerr.Wrap(err)
}

func (r *GormLedgerRepository) FindByKey(ctx context.Context, walletID wallet.ID, key ledger.Key) (*ledger.Entry, error) {
	var dto EntryDTO
	err := r.db.WithContext(ctx).
		Where("wallet_id = ? AND idempotency_key = ?", walletID.String(), key.String()).
		First(&dto).Error
	if err != nil {
		return nil, pgerr.NotFound(err, "idempotencyKey", key.String())
	}
	return toDomain(dto)
}

func (r *GormLedgerRepository) FindByKeyAndType(ctx context.Context, key ledger.Key, entryType ledger.EntryType) (*ledger.Entry, error) {
	var dto EntryDTO
	err := r.db.WithContext(ctx).
		Where("idempotency_key = ? AND type = ?", key.String(), entryType.String()).
		Order("seq").
		First(&dto).Error
	if err != nil {
		return nil, pgerr.NotFound(err, "idempotencyKey", key.String())
	}
	return toDomain(dto)
}

func (r *GormLedgerRepository) ListByWallet(ctx context.Context, walletID wallet.ID) ([]*ledger.Entry, error) {
	var dtos []EntryDTO
	err := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID.String()).
		Order("seq").
		Find(&dtos).Error
	if err != nil {
		return nil, pgerr.Wrap(err)
	}

	entries := make([]*ledger.Entry, 0, len(dtos))
	for _, dto := range dtos {
		e, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		entries = append(entries, e)
	}
	return entries, nil
}
